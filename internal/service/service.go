// Package service implements the API operations on top of the table store,
// the news fetcher and the optional record publisher.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
	"github.com/couchcryptid/disaster-resilience-api/internal/observability"
)

const (
	upstreamStore = "store"
	upstreamNews  = "news"

	defaultStoreTimeout = 15 * time.Second
	publishTimeout      = 5 * time.Second
)

// Service performs one store or news call per operation and returns wrapped errors.
type Service struct {
	store          domain.TableStore
	news           domain.NewsFetcher
	publisher      domain.RecordPublisher
	publishBackend string
	storeTimeout   time.Duration
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher announces created records through p. backend labels publish metrics.
func WithPublisher(p domain.RecordPublisher, backend string) Option {
	return func(s *Service) {
		s.publisher = p
		s.publishBackend = backend
	}
}

// WithStoreTimeout bounds every table store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// New creates a Service.
func New(store domain.TableStore, news domain.NewsFetcher, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		store:        store,
		news:         news,
		storeTimeout: defaultStoreTimeout,
		metrics:      metrics,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Instructions returns every safety instruction.
func (s *Service) Instructions(ctx context.Context) ([]domain.Instruction, error) {
	return selectRows[domain.Instruction](ctx, s, domain.Query{
		Table:   domain.TableInstructions,
		Columns: domain.InstructionColumns,
	})
}

// KitItems returns the emergency kit checklist.
func (s *Service) KitItems(ctx context.Context) ([]domain.KitItem, error) {
	return selectRows[domain.KitItem](ctx, s, domain.Query{
		Table:   domain.TableKitItems,
		Columns: domain.KitItemColumns,
	})
}

// Shelters returns every shelter with its map coordinates.
func (s *Service) Shelters(ctx context.Context) ([]domain.Shelter, error) {
	return selectRows[domain.Shelter](ctx, s, domain.Query{
		Table:   domain.TableShelters,
		Columns: domain.ShelterColumns,
	})
}

// Organizations returns active recovery organizations only.
func (s *Service) Organizations(ctx context.Context) ([]domain.Organization, error) {
	rows, err := selectRows[domain.Organization](ctx, s, domain.Query{
		Table:   domain.TableOrganizations,
		Columns: domain.OrganizationColumns,
		Filters: []domain.Filter{domain.Eq("is_active", true)},
	})
	if err != nil {
		return nil, err
	}

	active := rows[:0]
	for _, org := range rows {
		if org.IsActive {
			active = append(active, org)
		}
	}
	return active, nil
}

// AddAidRequest stores a pending aid request and returns the stored row.
func (s *Service) AddAidRequest(ctx context.Context, in domain.AidRequestInput) (domain.AidRequest, error) {
	rec := domain.NewAidRequestRecord(in)

	var rows []domain.AidRequest
	if err := s.insert(ctx, domain.TableAidRequests, rec, &rows); err != nil {
		return domain.AidRequest{}, err
	}
	if len(rows) == 0 {
		return domain.AidRequest{}, fmt.Errorf("add aid request: %w", domain.ErrNoRowsReturned)
	}

	created := rows[0]
	s.recordCreated(ctx, domain.RecordEvent{
		Kind:      domain.RecordKindAidRequest,
		ID:        created.ID,
		Status:    created.Status,
		CreatedAt: created.CreatedAt,
		Record:    created,
	})
	return created, nil
}

// CreateSOSAlert stores an active SOS alert and returns the stored row.
func (s *Service) CreateSOSAlert(ctx context.Context, in domain.SOSAlertInput) (domain.SOSAlert, error) {
	rec := domain.NewSOSAlertRecord(in)

	var rows []domain.SOSAlert
	if err := s.insert(ctx, domain.TableSOSAlerts, rec, &rows); err != nil {
		return domain.SOSAlert{}, err
	}
	if len(rows) == 0 {
		return domain.SOSAlert{}, fmt.Errorf("create SOS alert: %w", domain.ErrNoRowsReturned)
	}

	created := rows[0]
	s.logger.Warn("sos alert created",
		"alert_id", created.ID.String(),
		"emergency_type", created.EmergencyType,
	)
	s.recordCreated(ctx, domain.RecordEvent{
		Kind:      domain.RecordKindSOSAlert,
		ID:        created.ID,
		Status:    created.Status,
		CreatedAt: created.CreatedAt,
		Record:    created,
	})
	return created, nil
}

// ClimateNews returns recent disaster news for a location.
func (s *Service) ClimateNews(ctx context.Context, location, category string) ([]domain.NewsArticle, error) {
	start := time.Now()
	articles, err := s.news.FetchNews(ctx, location, category)
	s.metrics.ObserveUpstream(upstreamNews, start, err)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.NewsArticle{}
	}
	return articles, nil
}

// CheckDatabase pings the table store.
func (s *Service) CheckDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.Ping(ctx)
	s.metrics.ObserveUpstream(upstreamStore, start, err)
	if err != nil {
		return fmt.Errorf("ping table store: %w", err)
	}
	return nil
}

// CheckReadiness reports whether the table store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.CheckDatabase(ctx)
}

func selectRows[T any](ctx context.Context, s *Service, q domain.Query) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var rows []T
	start := time.Now()
	err := s.store.Select(ctx, q, &rows)
	s.metrics.ObserveUpstream(upstreamStore, start, err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", q.Table, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (s *Service) insert(ctx context.Context, table string, record, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.Insert(ctx, table, record, dest)
	s.metrics.ObserveUpstream(upstreamStore, start, err)
	if err != nil {
		return fmt.Errorf("store %s: %w", table, err)
	}
	return nil
}

// recordCreated counts the record and publishes it when a publisher is set.
// Publish failures are logged and never fail the request.
func (s *Service) recordCreated(ctx context.Context, event domain.RecordEvent) {
	s.metrics.RecordsCreated.WithLabelValues(event.Kind).Inc()
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.PublishErrors.WithLabelValues(s.publishBackend).Inc()
		s.logger.Error("publish record event failed",
			"kind", event.Kind,
			"id", event.ID.String(),
			"backend", s.publishBackend,
			"error", err,
		)
	}
}
