package cache

import (
	"maps"
	"sync"
)

// Stats counts calls that reached the remote store, in total and per table.
// It is purely observational.
type Stats struct {
	mu       sync.Mutex
	total    int
	perTable map[string]int
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Calls    int            `json:"calls"`
	PerTable map[string]int `json:"perTable"`
}

// NewStats creates zeroed counters.
func NewStats() *Stats {
	return &Stats{perTable: make(map[string]int)}
}

// Note records one remote call against table.
func (s *Stats) Note(table string) {
	s.mu.Lock()
	s.total++
	s.perTable[table]++
	s.mu.Unlock()
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Calls: s.total, PerTable: maps.Clone(s.perTable)}
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.total = 0
	s.perTable = make(map[string]int)
	s.mu.Unlock()
}
