package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
	"github.com/couchcryptid/disaster-resilience-api/internal/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- fakes ---

type fakeStore struct {
	mu       sync.Mutex
	rows     map[string]string // table -> JSON array returned by Select
	inserted map[string]any
	returned string // JSON array returned by Insert
	queries  []domain.Query
	err      error
	pingErr  error
}

func (f *fakeStore) Select(_ context.Context, q domain.Query, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return f.err
	}
	data, ok := f.rows[q.Table]
	if !ok {
		data = "null"
	}
	return json.Unmarshal([]byte(data), dest)
}

func (f *fakeStore) Insert(_ context.Context, table string, record, dest any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inserted == nil {
		f.inserted = map[string]any{}
	}
	f.inserted[table] = record
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.returned), dest)
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

type fakeNews struct {
	articles []domain.NewsArticle
	err      error
	location string
	category string
}

func (f *fakeNews) FetchNews(_ context.Context, location, category string) ([]domain.NewsArticle, error) {
	f.location, f.category = location, category
	return f.articles, f.err
}

type fakePublisher struct {
	events []domain.RecordEvent
	calls  int
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event domain.RecordEvent) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish context has no deadline")
	}
	f.calls++
	f.events = append(f.events, event)
	return f.err
}

func newTestService(store *fakeStore, news *fakeNews, opts ...Option) (*Service, *observability.Metrics) {
	if news == nil {
		news = &fakeNews{}
	}
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, news, logger, metrics, opts...), metrics
}

// --- reads ---

func TestService_Instructions(t *testing.T) {
	store := &fakeStore{rows: map[string]string{
		domain.TableInstructions: `[{"id": 1, "title": "Before a flood", "content": "Move valuables up", "disaster_type": "flood"}]`,
	}}
	svc, metrics := newTestService(store, nil)

	got, err := svc.Instructions(context.Background())
	require.NoError(t, err)

	want := []domain.Instruction{{Title: "Before a flood", Content: "Move valuables up", DisasterType: "flood"}}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b domain.RecordID) bool { return true })); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "1", got[0].ID.String())

	require.Len(t, store.queries, 1)
	assert.Equal(t, domain.InstructionColumns, store.queries[0].Columns)
	assert.Empty(t, store.queries[0].Filters)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("store", "success")), 0)
}

func TestService_EmptyReadsAreNotNil(t *testing.T) {
	svc, _ := newTestService(&fakeStore{}, nil)
	ctx := context.Background()

	kit, err := svc.KitItems(ctx)
	require.NoError(t, err)
	assert.NotNil(t, kit)
	assert.Empty(t, kit)

	shelters, err := svc.Shelters(ctx)
	require.NoError(t, err)
	assert.NotNil(t, shelters)

	orgs, err := svc.Organizations(ctx)
	require.NoError(t, err)
	assert.NotNil(t, orgs)
}

func TestService_Shelters(t *testing.T) {
	store := &fakeStore{rows: map[string]string{
		domain.TableShelters: `[{"id": "s1", "name": "Govt School", "latitude": 20.29, "longitude": 85.82, "capacity": null, "is_open": true}]`,
	}}
	svc, _ := newTestService(store, nil)

	got, err := svc.Shelters(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Capacity)
	assert.True(t, got[0].IsOpen)
	assert.Equal(t, domain.ShelterColumns, store.queries[0].Columns)
}

func TestService_OrganizationsActiveOnly(t *testing.T) {
	// The backend ignores the filter here; inactive rows must still be dropped.
	store := &fakeStore{rows: map[string]string{
		domain.TableOrganizations: `[
			{"id": 1, "name": "Red Cross", "is_active": true},
			{"id": 2, "name": "Closed Trust", "is_active": false},
			{"id": 3, "name": "Goonj", "is_active": true}
		]`,
	}}
	svc, _ := newTestService(store, nil)

	got, err := svc.Organizations(context.Background())
	require.NoError(t, err)

	names := make([]string, len(got))
	for i, o := range got {
		names[i] = o.Name
	}
	assert.Equal(t, []string{"Red Cross", "Goonj"}, names)
	assert.Equal(t, []domain.Filter{domain.Eq("is_active", true)}, store.queries[0].Filters)
}

func TestService_ReadError(t *testing.T) {
	svc, metrics := newTestService(&fakeStore{err: errors.New("connection refused")}, nil)

	_, err := svc.Instructions(context.Background())
	require.Error(t, err)
	assert.Equal(t, "fetch instructions: connection refused", err.Error())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("store", "error")), 0)
}

// --- writes ---

func TestService_AddAidRequest(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.October, 3, 9, 30, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	store := &fakeStore{returned: `[{"id": 17, "requester_name": "Ravi", "location_description": "Puri",
		"aid_needed": "Food", "status": "pending",
		"created_at": "2024-10-03T09:30:00.000000Z", "updated_at": "2024-10-03T09:30:00.000000Z"}]`}
	pub := &fakePublisher{}
	svc, metrics := newTestService(store, nil, WithPublisher(pub, "nats"))

	got, err := svc.AddAidRequest(context.Background(), domain.AidRequestInput{Name: "Ravi", Location: "Puri", AidNeeded: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "17", got.ID.String())
	assert.Equal(t, "pending", got.Status)

	rec, ok := store.inserted[domain.TableAidRequests].(domain.AidRequestRecord)
	require.True(t, ok)
	assert.Equal(t, domain.AidRequestRecord{
		RequesterName:       "Ravi",
		LocationDescription: "Puri",
		AidNeeded:           "Food",
		Status:              "pending",
		CreatedAt:           "2024-10-03T09:30:00.000000Z",
		UpdatedAt:           "2024-10-03T09:30:00.000000Z",
	}, rec)

	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.RecordKindAidRequest, pub.events[0].Kind)
	assert.Equal(t, "17", pub.events[0].ID.String())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RecordsCreated.WithLabelValues("aid_request")), 0)
}

func TestService_CreateSOSAlert(t *testing.T) {
	store := &fakeStore{returned: `[{"id": "0b9e", "name": "Asha", "phone": "9876543210", "location": "Cuttack",
		"emergency_type": "fire", "message": "Smoke", "status": "active"}]`}
	svc, _ := newTestService(store, nil)

	got, err := svc.CreateSOSAlert(context.Background(), domain.SOSAlertInput{
		Name: "Asha", Phone: "9876543210", Location: "Cuttack", EmergencyType: domain.EmergencyFire, Message: "Smoke",
	})
	require.NoError(t, err)
	assert.Equal(t, "0b9e", got.ID.String())

	rec := store.inserted[domain.TableSOSAlerts].(domain.SOSAlertRecord)
	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, "fire", rec.EmergencyType)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestService_InsertReturnsNoRows(t *testing.T) {
	svc, metrics := newTestService(&fakeStore{returned: `[]`}, nil)

	_, err := svc.AddAidRequest(context.Background(), domain.AidRequestInput{Name: "a", Location: "b", AidNeeded: "c"})
	require.ErrorIs(t, err, domain.ErrNoRowsReturned)

	_, err = svc.CreateSOSAlert(context.Background(), domain.SOSAlertInput{Name: "a", Phone: "1234567890", Location: "b", EmergencyType: domain.EmergencyOther, Message: "c"})
	require.ErrorIs(t, err, domain.ErrNoRowsReturned)

	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RecordsCreated.WithLabelValues("aid_request")), 0)
}

func TestService_InsertError(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(&fakeStore{err: errors.New("permission denied")}, nil, WithPublisher(pub, "kafka"))

	_, err := svc.AddAidRequest(context.Background(), domain.AidRequestInput{Name: "a", Location: "b", AidNeeded: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Empty(t, pub.events, "nothing is published for a failed insert")
}

func TestService_PublishFailureDoesNotFailRequest(t *testing.T) {
	store := &fakeStore{returned: `[{"id": 5, "status": "active"}]`}
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	svc, metrics := newTestService(store, nil, WithPublisher(pub, "nats"))

	got, err := svc.CreateSOSAlert(context.Background(), domain.SOSAlertInput{Name: "a", Phone: "1234567890", Location: "b", EmergencyType: domain.EmergencyOther, Message: "c"})
	require.NoError(t, err)
	assert.Equal(t, "5", got.ID.String())
	assert.Equal(t, 1, pub.calls, "publishing is not retried")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PublishErrors.WithLabelValues("nats")), 0)
}

// --- news & health ---

func TestService_ClimateNews(t *testing.T) {
	news := &fakeNews{}
	svc, _ := newTestService(&fakeStore{}, news)

	got, err := svc.ClimateNews(context.Background(), "Assam", "flood")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "Assam", news.location)
	assert.Equal(t, "flood", news.category)
}

func TestService_ClimateNewsError(t *testing.T) {
	svc, metrics := newTestService(&fakeStore{}, &fakeNews{err: domain.ErrNewsAPIKeyMissing})

	_, err := svc.ClimateNews(context.Background(), "India", "disaster")
	assert.ErrorIs(t, err, domain.ErrNewsAPIKeyMissing)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("news", "error")), 0)
}

func TestService_CheckDatabase(t *testing.T) {
	svc, _ := newTestService(&fakeStore{}, nil, WithStoreTimeout(time.Second))
	require.NoError(t, svc.CheckDatabase(context.Background()))
	require.NoError(t, svc.CheckReadiness(context.Background()))

	svc, _ = newTestService(&fakeStore{pingErr: errors.New("no such host")}, nil)
	err := svc.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Equal(t, "ping table store: no such host", err.Error())
}
