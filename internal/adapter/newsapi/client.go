package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

// Keywords OR-ed together in every search.
var Keywords = []string{
	"disaster", "flood", "cyclone", "earthquake", "wildfire",
	"drought", "heatwave", "landslide", "tsunami", "climate change",
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	PageSize  int
	RateLimit float64 // requests per second
	RateBurst int
}

// Client implements domain.NewsFetcher using the NewsAPI /v2/everything endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a NewsAPI client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://newsapi.org"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		apiKey:   opts.APIKey,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		pageSize: opts.PageSize,
		timeout:  opts.Timeout,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(limit, opts.RateBurst),
		logger:  logger,
	}
}

// FetchNews returns recent English-language disaster articles mentioning location.
// The client timeout bounds the rate limiter wait and the HTTP call together.
func (c *Client) FetchNews(ctx context.Context, location, category string) ([]domain.NewsArticle, error) {
	if c.apiKey == "" {
		return nil, domain.ErrNewsAPIKeyMissing
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{
		"q":        {BuildQuery(location, category)},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(c.pageSize)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("news API rate limit: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("news API request: %w", err)
		}
		if isNetworkError(err) {
			return nil, fmt.Errorf("network error contacting news API: %w", err)
		}
		return nil, fmt.Errorf("news API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("news API error: status %d: %s", resp.StatusCode, errorMessage(body))
	}

	var newsResp response
	if err := json.NewDecoder(resp.Body).Decode(&newsResp); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}
	if newsResp.Status != "" && newsResp.Status != "ok" {
		return nil, fmt.Errorf("news API error: %s", newsResp.Message)
	}

	articles := make([]domain.NewsArticle, 0, len(newsResp.Articles))
	for _, a := range newsResp.Articles {
		if a.Complete() {
			articles = append(articles, a)
		}
	}
	c.logger.Debug("news fetched",
		"location", location,
		"category", category,
		"total", newsResp.TotalResults,
		"kept", len(articles),
	)
	return articles, nil
}

// BuildQuery renders (kw1 OR kw2 ...) AND "location". A category that is not
// already a keyword joins the OR list.
func BuildQuery(location, category string) string {
	terms := make([]string, 0, len(Keywords)+1)
	seen := make(map[string]bool, len(Keywords)+1)
	add := func(term string) {
		key := strings.ToLower(strings.TrimSpace(term))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		terms = append(terms, quote(strings.TrimSpace(term)))
	}
	for _, kw := range Keywords {
		add(kw)
	}
	add(category)

	return fmt.Sprintf("(%s) AND %q", strings.Join(terms, " OR "), strings.TrimSpace(location))
}

func quote(term string) string {
	if strings.ContainsAny(term, " \t") {
		return strconv.Quote(term)
	}
	return term
}

// isNetworkError reports a transport failure or timeout. *url.Error itself
// satisfies net.Error, so the check runs on the error it wraps.
func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func errorMessage(body []byte) string {
	var apiErr response
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return strings.TrimSpace(string(body))
}

// NewsAPI response envelope.

type response struct {
	Status       string               `json:"status"`
	Code         string               `json:"code"`
	Message      string               `json:"message"`
	TotalResults int                  `json:"totalResults"`
	Articles     []domain.NewsArticle `json:"articles"`
}
