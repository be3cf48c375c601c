package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	s, err := Open(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_InsertReturnsStoredRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := domain.AidRequestRecord{
		RequesterName:       "Ravi",
		LocationDescription: "Puri",
		AidNeeded:           "Food",
		Status:              domain.AidRequestStatusPending,
		CreatedAt:           "2024-10-03T09:30:00.000000Z",
		UpdatedAt:           "2024-10-03T09:30:00.000000Z",
	}
	var rows []domain.AidRequest
	require.NoError(t, s.Insert(ctx, domain.TableAidRequests, rec, &rows))
	require.Len(t, rows, 1)

	_, err := uuid.Parse(rows[0].ID.String())
	require.NoError(t, err, "id should be a uuid")
	assert.Equal(t, "Ravi", rows[0].RequesterName)
	assert.Equal(t, "pending", rows[0].Status)
	assert.Equal(t, rec.CreatedAt, rows[0].CreatedAt)
}

func TestStore_SelectConvertsBooleans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	capacity := 250
	require.NoError(t, s.Insert(ctx, domain.TableShelters, domain.Shelter{
		Name: "Govt School", Latitude: 20.29, Longitude: 85.82, Capacity: &capacity, IsOpen: true,
	}, nil))
	require.NoError(t, s.Insert(ctx, domain.TableShelters, domain.Shelter{
		Name: "Community Hall", Latitude: 19.81, Longitude: 85.83, IsOpen: false,
	}, nil))

	var shelters []domain.Shelter
	require.NoError(t, s.Select(ctx, domain.Query{Table: domain.TableShelters, Columns: domain.ShelterColumns}, &shelters))
	require.Len(t, shelters, 2)

	assert.Equal(t, "Govt School", shelters[0].Name, "rows come back in insertion order")
	assert.True(t, shelters[0].IsOpen)
	require.NotNil(t, shelters[0].Capacity)
	assert.Equal(t, 250, *shelters[0].Capacity)
	assert.InDelta(t, 20.29, shelters[0].Latitude, 1e-9)

	assert.False(t, shelters[1].IsOpen)
	assert.Nil(t, shelters[1].Capacity)
}

func TestStore_SelectFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, org := range []domain.Organization{
		{Name: "Red Cross", IsActive: true},
		{Name: "Closed Trust", IsActive: false},
		{Name: "Goonj", IsActive: true},
	} {
		require.NoError(t, s.Insert(ctx, domain.TableOrganizations, org, nil))
	}

	var orgs []domain.Organization
	require.NoError(t, s.Select(ctx, domain.Query{
		Table:   domain.TableOrganizations,
		Columns: domain.OrganizationColumns,
		Filters: []domain.Filter{domain.Eq("is_active", true)},
	}, &orgs))

	require.Len(t, orgs, 2)
	assert.Equal(t, "Red Cross", orgs[0].Name)
	assert.Equal(t, "Goonj", orgs[1].Name)

	var limited []domain.Organization
	require.NoError(t, s.Select(ctx, domain.Query{Table: domain.TableOrganizations, Limit: 1}, &limited))
	assert.Len(t, limited, 1)
}

func TestStore_SelectEmptyTable(t *testing.T) {
	s := openTestStore(t)

	var items []domain.KitItem
	require.NoError(t, s.Select(context.Background(), domain.Query{Table: domain.TableKitItems, Columns: domain.KitItemColumns}, &items))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStore_RejectsBadIdentifiers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var rows []map[string]any
	err := s.Select(ctx, domain.Query{Table: "shelters; DROP TABLE shelters"}, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid identifier")

	err = s.Select(ctx, domain.Query{Table: domain.TableShelters, Filters: []domain.Filter{domain.Eq("1=1 OR name", "x")}}, &rows)
	require.Error(t, err)

	err = s.Insert(ctx, domain.TableShelters, map[string]any{"Name": "x"}, nil)
	require.Error(t, err)
}

func TestStore_ConstraintViolation(t *testing.T) {
	s := openTestStore(t)

	err := s.Insert(context.Background(), domain.TableSOSAlerts, domain.SOSAlertRecord{
		Name: "Asha", Phone: "9876543210", Location: "Cuttack", EmergencyType: "lava",
		Message: "help", Status: "active", CreatedAt: "t", UpdatedAt: "t",
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert sos_alerts")
}

func TestStore_Ping(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}
