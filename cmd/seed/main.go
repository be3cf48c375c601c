// Command seed loads reference data (instructions, kit items, shelters and
// organizations) from a YAML fixture into a local SQLite table store.
//
// Usage:
//
//	go run ./cmd/seed -db ./data/resilience.db -fixtures ./data/seed.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/disaster-resilience-api/internal/adapter/sqlite"
	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dbPath := flag.String("db", "./data/resilience.db", "SQLite database file")
	fixturesPath := flag.String("fixtures", "./data/seed.yaml", "YAML fixture file")
	verbose := flag.Bool("v", false, "log every inserted row")
	flag.Parse()

	f, err := os.Open(*fixturesPath)
	if err != nil {
		return fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	fx, err := loadFixtures(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", *fixturesPath, err)
	}
	if err := fx.validate(); err != nil {
		return fmt.Errorf("validate %s: %w", *fixturesPath, err)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := sharedobs.NewLogger(level, "text")

	ctx := context.Background()
	store, err := sqlite.Open(ctx, *dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := seed(ctx, store, fx)
	if err != nil {
		return err
	}
	for _, table := range []string{
		domain.TableInstructions, domain.TableKitItems, domain.TableShelters, domain.TableOrganizations,
	} {
		log.Printf("%s: %d rows", table, counts[table])
	}
	return nil
}

// seed inserts every fixture row through the table store port.
func seed(ctx context.Context, store domain.TableStore, fx *fixtures) (map[string]int, error) {
	counts := map[string]int{}
	insert := func(table string, rec any) error {
		if err := store.Insert(ctx, table, rec, nil); err != nil {
			return err
		}
		counts[table]++
		return nil
	}

	for _, r := range fx.instructions() {
		if err := insert(domain.TableInstructions, r); err != nil {
			return counts, err
		}
	}
	for _, r := range fx.kitItems() {
		if err := insert(domain.TableKitItems, r); err != nil {
			return counts, err
		}
	}
	for _, r := range fx.shelters() {
		if err := insert(domain.TableShelters, r); err != nil {
			return counts, err
		}
	}
	for _, r := range fx.organizations() {
		if err := insert(domain.TableOrganizations, r); err != nil {
			return counts, err
		}
	}
	return counts, nil
}
