package domain

import (
	"context"
	"errors"
)

// ErrNewsAPIKeyMissing is returned when news is requested without a configured API key.
var ErrNewsAPIKeyMissing = errors.New("news API key is not configured")

// Default news query parameters.
const (
	DefaultNewsLocation = "India"
	DefaultNewsCategory = "disaster"
)

// NewsSource names the publisher of an article.
type NewsSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// NewsArticle is a third-party article. It is fetched per request and never stored.
type NewsArticle struct {
	Source      NewsSource `json:"source"`
	Author      *string    `json:"author"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	URL         string     `json:"url"`
	URLToImage  *string    `json:"urlToImage"`
	PublishedAt string     `json:"publishedAt"`
	Content     *string    `json:"content"`
}

// Complete reports whether the article has everything the client renders:
// a title, a url, a publication time, and a source name.
func (a NewsArticle) Complete() bool {
	return a.Title != "" && a.URL != "" && a.PublishedAt != "" && a.Source.Name != ""
}

// NewsFetcher searches third-party news about disasters near a location.
type NewsFetcher interface {
	FetchNews(ctx context.Context, location, category string) ([]NewsArticle, error)
}
