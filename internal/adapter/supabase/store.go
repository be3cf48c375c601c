// Package supabase implements domain.TableStore over the Supabase PostgREST API.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

// Store talks to {baseURL}/rest/v1 with a service key.
type Store struct {
	baseURL    string
	key        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStore creates a PostgREST table store client.
func NewStore(baseURL, key string, timeout time.Duration, logger *slog.Logger) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/") + "/rest/v1",
		key:     key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Select runs GET /{table}?select=cols&col=eq.value.
func (s *Store) Select(ctx context.Context, q domain.Query, dest any) error {
	params := url.Values{}
	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	} else {
		params.Set("select", "*")
	}
	for _, f := range q.Filters {
		params.Add(f.Column, "eq."+formatValue(f.Value))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	req, err := s.newRequest(ctx, http.MethodGet, q.Table, params, nil)
	if err != nil {
		return err
	}
	if err := s.do(req, dest); err != nil {
		return fmt.Errorf("select %s: %w", q.Table, err)
	}
	return nil
}

// Insert runs POST /{table} asking PostgREST to return the stored row.
func (s *Store) Insert(ctx context.Context, table string, record any, dest any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", table, err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, table, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	if err := s.do(req, dest); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Ping selects a single instruction id to prove the project and key are usable.
func (s *Store) Ping(ctx context.Context) error {
	var rows []json.RawMessage
	return s.Select(ctx, domain.Query{
		Table:   domain.TableInstructions,
		Columns: []string{"id"},
		Limit:   1,
	}, &rows)
}

func (s *Store) newRequest(ctx context.Context, method, table string, params url.Values, body io.Reader) (*http.Request, error) {
	u := s.baseURL + "/" + url.PathEscape(table)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (s *Store) do(req *http.Request, dest any) error {
	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	s.logger.Debug("supabase request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return fmt.Errorf("supabase error: status %d: %s", resp.StatusCode, errorMessage(body))
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the PostgREST error message, falling back to the raw body.
func errorMessage(body []byte) string {
	var pgErr struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &pgErr); err == nil && pgErr.Message != "" {
		if pgErr.Details != "" {
			return pgErr.Message + ": " + pgErr.Details
		}
		return pgErr.Message
	}
	return strings.TrimSpace(string(body))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
