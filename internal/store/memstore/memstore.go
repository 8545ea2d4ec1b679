// Package memstore is an in-process store backend used for local
// development and tests. It counts calls per table and can inject failures.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"clubdir/internal/clock"
	"clubdir/internal/store"
)

// ErrInjected is the default failure returned after Fail.
var ErrInjected = errors.New("injected store failure")

type tableData struct {
	order []string
	rows  map[string]store.Record
}

// Store keeps rows in memory, in insertion order per table.
type Store struct {
	mu       sync.Mutex
	clock    clock.Clock
	tables   map[string]*tableData
	calls    map[string]int
	creates  map[string]int
	updates  map[string]int
	failures map[string]error
}

var _ store.Client = (*Store)(nil)

// New creates an empty store. A nil clock uses the system clock.
func New(c clock.Clock) *Store {
	if c == nil {
		c = clock.System{}
	}
	return &Store{
		clock:    c,
		tables:   make(map[string]*tableData),
		calls:    make(map[string]int),
		creates:  make(map[string]int),
		updates:  make(map[string]int),
		failures: make(map[string]error),
	}
}

// Fail makes every subsequent call against tableName return err.
// An empty tableName fails every table. A nil err uses ErrInjected.
func (s *Store) Fail(tableName string, err error) {
	if err == nil {
		err = ErrInjected
	}
	s.mu.Lock()
	s.failures[tableName] = err
	s.mu.Unlock()
}

// Recover clears all injected failures.
func (s *Store) Recover() {
	s.mu.Lock()
	s.failures = make(map[string]error)
	s.mu.Unlock()
}

// Calls returns how many calls reached tableName.
func (s *Store) Calls(tableName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[tableName]
}

// Writes returns the number of creates and updates against tableName.
func (s *Store) Writes(tableName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates[tableName] + s.updates[tableName]
}

// Rows returns a copy of every row in tableName.
func (s *Store) Rows(tableName string) []store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tables[tableName]
	if t == nil {
		return nil
	}
	out := make([]store.Record, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id].Clone())
	}
	return out
}

// Seed inserts a row without counting a call.
func (s *Store) Seed(tableName string, fields store.Fields) store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(tableName, fields)
}

func (s *Store) begin(op, tableName string) error {
	s.calls[tableName]++
	if err, ok := s.failures[tableName]; ok {
		return &store.RemoteError{Op: op, Table: tableName, Err: err}
	}
	if err, ok := s.failures[""]; ok {
		return &store.RemoteError{Op: op, Table: tableName, Err: err}
	}
	return nil
}

func (s *Store) ensureTable(name string) *tableData {
	t := s.tables[name]
	if t == nil {
		t = &tableData{rows: make(map[string]store.Record)}
		s.tables[name] = t
	}
	return t
}

func (s *Store) insert(tableName string, fields store.Fields) store.Record {
	rec := store.Record{
		ID:          store.NewRecordID(),
		CreatedTime: s.clock.Now(),
		Fields:      make(store.Fields, len(fields)),
	}
	for k, v := range fields {
		if v != nil {
			rec.Fields[k] = v
		}
	}
	t := s.ensureTable(tableName)
	t.order = append(t.order, rec.ID)
	t.rows[rec.ID] = rec
	return rec.Clone()
}

// Create inserts a row. Nil values are dropped.
func (s *Store) Create(_ context.Context, tableName string, fields store.Fields) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("create", tableName); err != nil {
		return store.Record{}, err
	}
	s.creates[tableName]++
	return s.insert(tableName, fields), nil
}

// Update merges fields into the row; nil values clear columns.
func (s *Store) Update(_ context.Context, tableName, id string, fields store.Fields) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("update", tableName); err != nil {
		return store.Record{}, err
	}
	t := s.tables[tableName]
	if t == nil {
		return store.Record{}, store.ErrNotFound
	}
	rec, ok := t.rows[id]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	rec = rec.Clone()
	for k, v := range fields {
		if v == nil {
			delete(rec.Fields, k)
			continue
		}
		rec.Fields[k] = v
	}
	t.rows[id] = rec
	s.updates[tableName]++
	return rec.Clone(), nil
}

// Find returns the row with the given id.
func (s *Store) Find(_ context.Context, tableName, id string) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("find", tableName); err != nil {
		return store.Record{}, err
	}
	if t := s.tables[tableName]; t != nil {
		if rec, ok := t.rows[id]; ok {
			return rec.Clone(), nil
		}
	}
	return store.Record{}, store.ErrNotFound
}

// FirstPage returns at most one page (100 rows, or MaxRecords if smaller).
func (s *Store) FirstPage(_ context.Context, tableName string, q store.Query) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("firstPage", tableName); err != nil {
		return nil, err
	}
	limit := 100
	if q.MaxRecords > 0 && q.MaxRecords < limit {
		limit = q.MaxRecords
	}
	return s.list(tableName, q, limit), nil
}

// All returns every matching row, honoring MaxRecords.
func (s *Store) All(_ context.Context, tableName string, q store.Query) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("all", tableName); err != nil {
		return nil, err
	}
	return s.list(tableName, q, q.MaxRecords), nil
}

func (s *Store) list(tableName string, q store.Query, limit int) []store.Record {
	t := s.tables[tableName]
	if t == nil {
		return []store.Record{}
	}

	out := make([]store.Record, 0, len(t.order))
	for _, id := range t.order {
		rec := t.rows[id]
		if q.Filter != nil && !q.Filter.Match(rec.Fields) {
			continue
		}
		out = append(out, rec)
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, key := range q.Sort {
				a, b := out[i].Fields.String(key.Field), out[j].Fields.String(key.Field)
				if a == b {
					continue
				}
				if key.Desc {
					return a > b
				}
				return a < b
			}
			return false
		})
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	for i := range out {
		out[i] = store.Record{
			ID:          out[i].ID,
			CreatedTime: out[i].CreatedTime,
			Fields:      store.Project(out[i].Fields, q.Fields).Clone(),
		}
	}
	return out
}
