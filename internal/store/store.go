// Package store defines the contract for the remote tabular store that holds
// every club, membership, access request, event and user row.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fields is the column map of a row. On update a nil value clears the
// column and an absent key leaves it unchanged.
type Fields map[string]any

// String returns the field as a string, or "" when it is absent or null.
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Time parses the field as an RFC 3339 timestamp or a plain date.
// Missing, empty and unparseable values return nil.
func (f Fields) Time(key string) *time.Time {
	s := strings.TrimSpace(f.String(key))
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Record is one row of a table.
type Record struct {
	ID          string    `json:"id"`
	CreatedTime time.Time `json:"createdTime"`
	Fields      Fields    `json:"fields"`
}

// Clone returns a copy whose field map can be mutated freely.
func (r Record) Clone() Record {
	r.Fields = r.Fields.Clone()
	return r
}

// Sort orders a listing by one field.
type Sort struct {
	Field string
	Desc  bool
}

// Direction returns "asc" or "desc".
func (s Sort) Direction() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Query describes a listing. A zero MaxRecords means no limit.
type Query struct {
	Filter     Filter
	Sort       []Sort
	MaxRecords int
	Fields     []string
}

// Client is implemented by every store backend.
type Client interface {
	Create(ctx context.Context, table string, fields Fields) (Record, error)
	Update(ctx context.Context, table, id string, fields Fields) (Record, error)
	Find(ctx context.Context, table, id string) (Record, error)
	// FirstPage returns a single bounded page of matching rows.
	FirstPage(ctx context.Context, table string, q Query) ([]Record, error)
	// All returns every matching row, paging internally until exhausted.
	All(ctx context.Context, table string, q Query) ([]Record, error)
}

// Pinger is implemented by clients that can cheaply check connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRecordID returns a store-style row identifier ("rec" + 14 characters).
func NewRecordID() string {
	return "rec" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

// Project keeps only the named fields. An empty list keeps everything.
func Project(fields Fields, names []string) Fields {
	if len(names) == 0 {
		return fields
	}
	out := make(Fields, len(names))
	for _, name := range names {
		if v, ok := fields[name]; ok {
			out[name] = v
		}
	}
	return out
}
