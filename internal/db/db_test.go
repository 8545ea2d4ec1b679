package db

import (
	"testing"
	"time"

	"clubdir/internal/cache"
	"clubdir/internal/clock"
	"clubdir/internal/store/memstore"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*DB, *memstore.Store, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(epoch)
	mem := memstore.New(fc)
	counted := cache.NewCounted(mem, cache.NewStats())
	c := cache.New(counted, fc, nil)
	return New(counted, c, DefaultTables(), nil, fc, nil), mem, fc
}
