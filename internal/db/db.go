// Package db is the typed data-access layer. Reads go through the
// read-through cache under a named policy; writes go straight to the store
// client and invalidate the affected table before returning.
package db

import (
	"time"

	"go.uber.org/zap"

	"clubdir/internal/cache"
	"clubdir/internal/clock"
	"clubdir/internal/store"
)

// Tables holds the configured table names.
type Tables struct {
	Clubs          string
	ClubMembers    string
	AccessRequests string
	Users          string
	Events         string
}

// DefaultTables returns the stock table names.
func DefaultTables() Tables {
	return Tables{
		Clubs:          "Clubs",
		ClubMembers:    "ClubMembers",
		AccessRequests: "AccessRequests",
		Users:          "Users",
		Events:         "Events",
	}
}

// DB wraps the cache and the store client it reads through.
type DB struct {
	client   store.Client
	cache    *cache.Cache
	tables   Tables
	policies Policies
	clock    clock.Clock
	logger   *zap.Logger
}

// New creates the data-access layer. client should be the same (counted)
// client the cache reads through so that writes are accounted too.
func New(client store.Client, c *cache.Cache, tables Tables, policies Policies, clk clock.Clock, logger *zap.Logger) *DB {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &DB{
		client:   client,
		cache:    c,
		tables:   tables,
		policies: policies,
		clock:    clk,
		logger:   logger.Named("db"),
	}
}

// Tables returns the configured table names.
func (d *DB) Tables() Tables {
	return d.tables
}

// Cache returns the read-through cache.
func (d *DB) Cache() *cache.Cache {
	return d.cache
}

// Now returns the current time from the injected clock.
func (d *DB) Now() time.Time {
	return d.clock.Now()
}

// parseRows converts raw rows, skipping ones the parser rejects.
func parseRows[T any](d *DB, table string, recs []store.Record, parse func(store.Record) (*T, error)) []*T {
	out := make([]*T, 0, len(recs))
	for _, rec := range recs {
		v, err := parse(rec)
		if err != nil {
			d.logger.Warn("skipping malformed row", zap.String("table", table), zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}
