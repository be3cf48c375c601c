package newsapi

import (
	"context"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
	"github.com/couchcryptid/disaster-resilience-api/internal/observability"
)

// CachedFetcher wraps a NewsFetcher with an in-memory TTL cache.
type CachedFetcher struct {
	inner   domain.NewsFetcher
	cache   *gocache.Cache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a news fetcher.
func NewCachedFetcher(inner domain.NewsFetcher, ttl time.Duration, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedFetcher) FetchNews(ctx context.Context, location, category string) ([]domain.NewsArticle, error) {
	key := cacheKey(location, category)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.NewsCache.WithLabelValues("hit").Inc()
		return v.([]domain.NewsArticle), nil
	}
	c.metrics.NewsCache.WithLabelValues("miss").Inc()

	articles, err := c.inner.FetchNews(ctx, location, category)
	if err != nil {
		return nil, err
	}
	// Empty results are not cached so a quiet period does not hide new articles.
	if len(articles) > 0 {
		c.cache.SetDefault(key, articles)
	}
	return articles, nil
}

// cacheKey normalizes the query terms and length-prefixes the location, so
// distinct (location, category) pairs never share a key.
func cacheKey(location, category string) string {
	loc := strings.ToLower(strings.TrimSpace(location))
	return strconv.Itoa(len(loc)) + ":" + loc + "|" + strings.ToLower(strings.TrimSpace(category))
}
