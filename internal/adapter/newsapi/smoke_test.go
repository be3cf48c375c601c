//go:build newsapi

package newsapi

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real NewsAPI service and require a valid NEWS_API_KEY env var.
// Run with: go test -tags=newsapi ./internal/adapter/newsapi/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("NEWS_API_KEY")
	if key == "" {
		t.Fatal("NEWS_API_KEY must be set to run smoke tests")
	}
	return NewClient(Options{APIKey: key, Timeout: 10 * time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_FetchNews(t *testing.T) {
	c := smokeClient(t)

	articles, err := c.FetchNews(context.Background(), "India", "disaster")
	require.NoError(t, err)

	assert.LessOrEqual(t, len(articles), 20)
	for _, a := range articles {
		assert.True(t, a.Complete(), "article %q should be complete", a.Title)
	}
}

func TestSmoke_InvalidKey(t *testing.T) {
	c := NewClient(Options{APIKey: "invalid-key"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.FetchNews(context.Background(), "India", "disaster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "news API error: status 401")
}
