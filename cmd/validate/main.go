// Command validate performs end-to-end checks against a running API: health
// and database connectivity, the shape of every reference-data endpoint, the
// 400 contract for invalid submissions, and optionally real record creation
// and news retrieval.
//
// Usage:
//
//	go run ./cmd/validate -base-url http://localhost:8080/api
//	go run ./cmd/validate -base-url http://localhost:8080/api -write -news
//	go run ./cmd/validate -wait 60s   # poll /health until the API is up
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	baseURL string
	write   bool
	news    bool
	timeout time.Duration
	wait    time.Duration
}

const (
	initialPollBackoff = 250 * time.Millisecond
	maxPollBackoff     = 4 * time.Second
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080/api", "API base URL including the prefix")
	write := flag.Bool("write", false, "create one SOS alert and one aid request")
	news := flag.Bool("news", false, "check the news endpoint (needs NEWS_API_KEY on the server)")
	timeout := flag.Duration("timeout", 20*time.Second, "per-request timeout")
	wait := flag.Duration("wait", 0, "poll /health for up to this long before validating")
	flag.Parse()

	os.Exit(run(options{
		baseURL: strings.TrimRight(*baseURL, "/"),
		write:   *write,
		news:    *news,
		timeout: *timeout,
		wait:    *wait,
	}, os.Stdout))
}

func run(opts options, out io.Writer) int {
	c := &checker{
		baseURL: opts.baseURL,
		client:  &http.Client{Timeout: opts.timeout},
	}

	fmt.Fprintf(out, "=== Disaster Resilience API Validation (%s) ===\n\n", opts.baseURL)

	if opts.wait > 0 {
		if err := c.waitForAPI(opts.wait); err != nil {
			fmt.Fprintf(out, "API not reachable: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		c.validateHealth(),
		c.validateReferenceData(),
		c.validateInputContract(),
	}
	if opts.write {
		phases = append(phases, c.validateRecordCreation())
	}
	if opts.news {
		phases = append(phases, c.validateNews())
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

type checker struct {
	baseURL string
	client  *http.Client
}

// call performs a request and decodes a JSON response into v when v is non-nil.
func (c *checker) call(method, path string, body any, v any) (int, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.baseURL+path, r)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// waitForAPI polls /health with exponential backoff until it answers 200 or
// the wait budget runs out.
func (c *checker) waitForAPI(wait time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	backoff := initialPollBackoff
	for {
		code, err := c.call(http.MethodGet, "/health", nil, nil)
		if err == nil && code == http.StatusOK {
			return nil
		}
		if err == nil {
			err = fmt.Errorf("status %d", code)
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("gave up after %s: %w", wait, err)
		}
		backoff = retry.NextBackoff(backoff, maxPollBackoff)
	}
}

// ── Phase 1: health ──

func (c *checker) validateHealth() *phase {
	p := &phase{name: "Phase 1: Health and database"}

	var health map[string]string
	code, err := c.call(http.MethodGet, "/health", nil, &health)
	switch {
	case err != nil:
		p.errorf("GET /health: %v", err)
	case code != http.StatusOK:
		p.errorf("GET /health: status %d", code)
	case health["status"] != "healthy":
		p.errorf("GET /health: status field %q, want healthy", health["status"])
	}

	var db map[string]string
	code, err = c.call(http.MethodGet, "/test/db", nil, &db)
	switch {
	case err != nil:
		p.errorf("GET /test/db: %v", err)
	case code != http.StatusOK || db["database"] != "connected":
		p.errorf("GET /test/db: status %d, database %q, error %q", code, db["database"], db["error"])
	}
	return p
}

// ── Phase 2: reference data ──

func (c *checker) validateReferenceData() *phase {
	p := &phase{name: "Phase 2: Reference data shape"}

	var instructions []domain.Instruction
	if c.getList(p, "/prepare/instructions", &instructions) {
		for i, in := range instructions {
			if in.ID.IsZero() || in.Title == "" || in.Content == "" {
				p.errorf("instructions[%d]: missing id, title or content", i)
			}
		}
	}

	var kit []domain.KitItem
	if c.getList(p, "/prepare/kit", &kit) {
		for i, k := range kit {
			if k.ID.IsZero() || k.ItemName == "" {
				p.errorf("kit[%d]: missing id or item_name", i)
			}
		}
	}

	var shelters []domain.Shelter
	if c.getList(p, "/respond/shelters", &shelters) {
		for i, s := range shelters {
			if !domain.ValidateCoordinates(s.Latitude, s.Longitude) {
				p.errorf("shelters[%d] %q: invalid coordinates (%v, %v)", i, s.Name, s.Latitude, s.Longitude)
			}
			if s.Capacity != nil && *s.Capacity < 0 {
				p.errorf("shelters[%d] %q: negative capacity", i, s.Name)
			}
		}
	}

	var orgs []domain.Organization
	if c.getList(p, "/recover/organizations", &orgs) {
		for i, o := range orgs {
			if !o.IsActive {
				p.errorf("organizations[%d] %q: inactive organization served", i, o.Name)
			}
			if o.Latitude != nil && o.Longitude != nil && !domain.ValidateCoordinates(*o.Latitude, *o.Longitude) {
				p.errorf("organizations[%d] %q: invalid coordinates", i, o.Name)
			}
		}
	}
	return p
}

// getList fetches a read endpoint and requires a 200 with a JSON array (never null).
func (c *checker) getList(p *phase, path string, v any) bool {
	var raw json.RawMessage
	code, err := c.call(http.MethodGet, path, nil, &raw)
	if err != nil {
		p.errorf("GET %s: %v", path, err)
		return false
	}
	if code != http.StatusOK {
		p.errorf("GET %s: status %d: %s", path, code, raw)
		return false
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		p.errorf("GET %s: expected a JSON array, got %.40s", path, raw)
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		p.errorf("GET %s: %v", path, err)
		return false
	}
	return true
}

// ── Phase 3: input contract ──

func (c *checker) validateInputContract() *phase {
	p := &phase{name: "Phase 3: Invalid submissions rejected"}

	cases := []struct {
		path string
		body any
	}{
		{"/respond/sos", map[string]any{"name": "Validator", "phone": "12345", "location": "x", "emergency_type": "other", "message": "x"}},
		{"/respond/sos", map[string]any{"name": "Validator", "phone": "9876543210", "location": "x", "emergency_type": "lava", "message": "x"}},
		{"/respond/sos", map[string]any{"name": "Validator"}},
		{"/recover/request-aid", map[string]any{"name": "Validator", "location": "  "}},
		{"/recover/request-aid", nil},
	}
	for _, tc := range cases {
		var resp struct {
			Error string `json:"error"`
		}
		code, err := c.call(http.MethodPost, tc.path, tc.body, &resp)
		switch {
		case err != nil:
			p.errorf("POST %s %v: %v", tc.path, tc.body, err)
		case code != http.StatusBadRequest:
			p.errorf("POST %s %v: status %d, want 400", tc.path, tc.body, code)
		case resp.Error == "":
			p.errorf("POST %s %v: empty error message", tc.path, tc.body)
		}
	}
	return p
}

// ── Phase 4: record creation ──

func (c *checker) validateRecordCreation() *phase {
	p := &phase{name: "Phase 4: Record creation"}

	var sos struct {
		Message string          `json:"message"`
		AlertID domain.RecordID `json:"alert_id"`
		Status  string          `json:"status"`
	}
	code, err := c.call(http.MethodPost, "/respond/sos", map[string]any{
		"name":           "Validation Probe",
		"phone":          "0000000000",
		"location":       "validate command",
		"emergency_type": "other",
		"message":        "automated end-to-end check, please ignore",
	}, &sos)
	switch {
	case err != nil:
		p.errorf("POST /respond/sos: %v", err)
	case code != http.StatusCreated:
		p.errorf("POST /respond/sos: status %d", code)
	case sos.AlertID.IsZero() || sos.Status != domain.SOSAlertStatusActive:
		p.errorf("POST /respond/sos: alert_id %q, status %q", sos.AlertID, sos.Status)
	}

	var aid struct {
		Message   string          `json:"message"`
		RequestID domain.RecordID `json:"request_id"`
		Status    string          `json:"status"`
	}
	code, err = c.call(http.MethodPost, "/recover/request-aid", map[string]any{
		"name":       "Validation Probe",
		"location":   "validate command",
		"aid_needed": "automated end-to-end check, please ignore",
	}, &aid)
	switch {
	case err != nil:
		p.errorf("POST /recover/request-aid: %v", err)
	case code != http.StatusCreated:
		p.errorf("POST /recover/request-aid: status %d", code)
	case aid.RequestID.IsZero() || aid.Status != domain.AidRequestStatusPending:
		p.errorf("POST /recover/request-aid: request_id %q, status %q", aid.RequestID, aid.Status)
	}
	return p
}

// ── Phase 5: news ──

func (c *checker) validateNews() *phase {
	p := &phase{name: "Phase 5: Climate news"}

	var articles []domain.NewsArticle
	if !c.getList(p, "/prepare/news", &articles) {
		return p
	}
	for i, a := range articles {
		if !a.Complete() {
			p.errorf("news[%d]: incomplete article %q", i, a.Title)
		}
	}
	return p
}
