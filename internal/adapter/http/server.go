package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
	"github.com/couchcryptid/disaster-resilience-api/internal/observability"
)

// API is the set of operations the routes expose.
type API interface {
	Instructions(ctx context.Context) ([]domain.Instruction, error)
	KitItems(ctx context.Context) ([]domain.KitItem, error)
	Shelters(ctx context.Context) ([]domain.Shelter, error)
	Organizations(ctx context.Context) ([]domain.Organization, error)
	AddAidRequest(ctx context.Context, in domain.AidRequestInput) (domain.AidRequest, error)
	CreateSOSAlert(ctx context.Context, in domain.SOSAlertInput) (domain.SOSAlert, error)
	ClimateNews(ctx context.Context, location, category string) ([]domain.NewsArticle, error)
	CheckDatabase(ctx context.Context) error
	CheckReadiness(ctx context.Context) error
}

// Options configures the HTTP server.
type Options struct {
	Addr           string
	APIPrefix      string
	ServiceName    string
	ServiceVersion string
	StoreDriver    string
	CORSOrigins    []string
}

// Server exposes the API routes under the prefix plus /healthz, /readyz and /metrics.
type Server struct {
	httpServer *http.Server
	api        API
	opts       Options
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the HTTP server and registers every route.
func NewServer(opts Options, api API, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		api:     api,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
	}

	p := opts.APIPrefix
	mux.HandleFunc("GET "+p+"/prepare/instructions", listHandler(s, api.Instructions))
	mux.HandleFunc("GET "+p+"/prepare/kit", listHandler(s, api.KitItems))
	mux.HandleFunc("GET "+p+"/prepare/news", s.handleNews)
	mux.HandleFunc("GET "+p+"/respond/shelters", listHandler(s, api.Shelters))
	mux.HandleFunc("POST "+p+"/respond/sos", s.handleSOS)
	mux.HandleFunc("POST "+p+"/recover/request-aid", s.handleAidRequest)
	mux.HandleFunc("GET "+p+"/recover/organizations", listHandler(s, api.Organizations))
	mux.HandleFunc("GET "+p+"/health", s.handleHealth)
	mux.HandleFunc("GET "+p+"/test/db", s.handleTestDB)

	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(api))
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := s.instrument(cors(opts.CORSOrigins, s.recoverer(mux)))

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// News calls may take up to their client timeout, store calls up to the store timeout.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr, "prefix", s.opts.APIPrefix)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
