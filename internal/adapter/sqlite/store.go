// Package sqlite implements domain.TableStore on a local SQLite file for
// development and offline use.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
)

//go:embed schema.sql
var schemaFS embed.FS

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store is a TableStore backed by database/sql and go-sqlite3.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open creates the database directory if needed, opens the file and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("sqlite store ready", "path", path)
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Select runs SELECT cols FROM table WHERE col = ? ... in insertion order.
func (s *Store) Select(ctx context.Context, q domain.Query, dest any) error {
	if err := checkIdentifiers(append([]string{q.Table}, q.Columns...)...); err != nil {
		return err
	}

	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ", ")
	}

	var (
		where []string
		args  []any
	)
	for _, f := range q.Filters {
		if err := checkIdentifiers(f.Column); err != nil {
			return err
		}
		where = append(where, f.Column+" = ?")
		args = append(args, bindValue(f.Value))
	}

	query := "SELECT " + cols + " FROM " + q.Table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select %s: %w", q.Table, err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return fmt.Errorf("select %s: %w", q.Table, err)
	}
	return decodeInto(records, dest)
}

// Insert writes record with a fresh uuid id and reads the stored row back into dest.
func (s *Store) Insert(ctx context.Context, table string, record any, dest any) error {
	if err := checkIdentifiers(table); err != nil {
		return err
	}

	fields, err := toFields(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", table, err)
	}
	id, ok := fields["id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		fields["id"] = id
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	if err := checkIdentifiers(cols...); err != nil {
		return err
	}

	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = bindValue(fields[col])
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	s.logger.Debug("sqlite insert", "table", table, "id", id)

	return s.Select(ctx, domain.Query{Table: table, Filters: []domain.Filter{domain.Eq("id", id)}}, dest)
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !identifier.MatchString(n) {
			return fmt.Errorf("invalid identifier %q", n)
		}
	}
	return nil
}

// scanRows reads every row into a column-keyed map. SQLite has no boolean
// storage class, so BOOLEAN-declared integer columns are converted back.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	records := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(map[string]any, len(types))
		for i, ct := range types {
			v := values[i]
			switch x := v.(type) {
			case []byte:
				v = string(x)
			case int64:
				if strings.EqualFold(ct.DatabaseTypeName(), "BOOLEAN") {
					v = x != 0
				}
			}
			rec[ct.Name()] = v
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func decodeInto(records []map[string]any, dest any) error {
	if dest == nil {
		return nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	return nil
}

func toFields(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// bindValue maps decoded JSON values onto driver arguments.
func bindValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return v
	}
}
