package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-resilience-api/internal/adapter/sqlite"
	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

func TestLoadFixtures_RepoSeedFile(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "data", "seed.yaml"))
	require.NoError(t, err)
	defer f.Close()

	fx, err := loadFixtures(f)
	require.NoError(t, err)
	require.NoError(t, fx.validate())

	assert.NotEmpty(t, fx.Instructions)
	assert.NotEmpty(t, fx.KitItems)
	assert.NotEmpty(t, fx.Shelters)
	assert.NotEmpty(t, fx.Orgs)
}

func TestLoadFixtures_UnknownField(t *testing.T) {
	_, err := loadFixtures(strings.NewReader("shelters:\n  - name: A\n    lat: 1\n"))
	require.Error(t, err)
}

func TestFixturesValidate(t *testing.T) {
	fx, err := loadFixtures(strings.NewReader(`
shelters:
  - name: Off the map
    latitude: 95
    longitude: 80
  - name: Text coordinates
    latitude: "20.5"
    longitude: "85.1"
organizations:
  - name: Half located
    latitude: 20
  - name: Unlocated
`))
	require.NoError(t, err)

	err = fx.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `shelters[0] "Off the map"`)
	assert.NotContains(t, err.Error(), "Text coordinates")
	assert.Contains(t, err.Error(), `organizations[0] "Half located"`)
	assert.NotContains(t, err.Error(), "Unlocated")
}

func TestSeed_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "seed.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer store.Close()

	fx, err := loadFixtures(strings.NewReader(`
instructions:
  - {title: Before a flood, content: Move up, disaster_type: flood}
shelters:
  - {name: School, latitude: "19.81", longitude: 85.83, capacity: 400}
organizations:
  - {name: Red Cross, latitude: 20.29, longitude: 85.82}
  - {name: Old Trust, is_active: false}
`))
	require.NoError(t, err)
	require.NoError(t, fx.validate())

	counts, err := seed(ctx, store, fx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.TableInstructions])
	assert.Equal(t, 0, counts[domain.TableKitItems])
	assert.Equal(t, 2, counts[domain.TableOrganizations])

	var shelters []domain.Shelter
	require.NoError(t, store.Select(ctx, domain.Query{Table: domain.TableShelters, Columns: domain.ShelterColumns}, &shelters))
	require.Len(t, shelters, 1)
	assert.InDelta(t, 19.81, shelters[0].Latitude, 1e-9)
	assert.True(t, shelters[0].IsOpen, "is_open defaults to true")

	var orgs []domain.Organization
	require.NoError(t, store.Select(ctx, domain.Query{
		Table:   domain.TableOrganizations,
		Columns: domain.OrganizationColumns,
		Filters: []domain.Filter{domain.Eq("is_active", true)},
	}, &orgs))
	require.Len(t, orgs, 1)
	assert.Equal(t, "Red Cross", orgs[0].Name)
	require.NotNil(t, orgs[0].Latitude)
	assert.InDelta(t, 20.29, *orgs[0].Latitude, 1e-9)
}
