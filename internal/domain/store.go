package domain

import (
	"context"
	"errors"
)

// Table names in the relational store.
const (
	TableInstructions  = "instructions"
	TableKitItems      = "kit_items"
	TableShelters      = "shelters"
	TableOrganizations = "organizations"
	TableAidRequests   = "aid_requests"
	TableSOSAlerts     = "sos_alerts"
)

// ErrNoRowsReturned is returned when an insert succeeds upstream but the
// store sends back no row representation.
var ErrNoRowsReturned = errors.New("no record returned from insert")

// Filter is an equality predicate on a single column.
type Filter struct {
	Column string
	Value  any
}

// Query describes a select against one table with an explicit column list.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	Limit   int // 0 means no limit
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// TableStore is the relational row store behind the API.
//
// Select decodes the matching rows into dest, which must be a pointer to a
// slice. Insert writes one record (a struct with json tags naming the columns)
// and decodes the returned rows into dest, also a pointer to a slice.
type TableStore interface {
	Select(ctx context.Context, q Query, dest any) error
	Insert(ctx context.Context, table string, record any, dest any) error
	Ping(ctx context.Context) error
}
