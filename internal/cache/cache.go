// Package cache is the in-process read-through cache that sits in front of
// the remote store, plus the accountant that counts calls reaching it.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"clubdir/internal/clock"
	"clubdir/internal/store"
)

type entry struct {
	expiresAt time.Time
	records   []store.Record
	count     int
	seq       uint64
}

type stamp struct {
	epoch uint64
	table uint64
}

// Cache maps table::scope::op::hash(params) to a result and its expiry.
// Misses for the same key are collapsed into one store call.
type Cache struct {
	client store.Client
	clock  clock.Clock
	logger *zap.Logger

	entries     *xsync.MapOf[string, entry]
	generations *xsync.MapOf[string, uint64]
	epoch       atomic.Uint64
	bypass      atomic.Bool
	seq         atomic.Uint64
	group       singleflight.Group
}

// New creates an empty cache over client.
func New(client store.Client, c clock.Clock, logger *zap.Logger) *Cache {
	if c == nil {
		c = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		client:      client,
		clock:       c,
		logger:      logger.Named("cache"),
		entries:     xsync.NewMapOf[string, entry](),
		generations: xsync.NewMapOf[string, uint64](),
	}
}

// FirstPage reads one bounded page through the cache.
func (c *Cache) FirstPage(ctx context.Context, table string, q store.Query, p Policy) ([]store.Record, error) {
	e, err := c.load(ctx, table, OpFirstPage, SerializeQuery(q), p, func(ctx context.Context) (entry, error) {
		records, err := c.client.FirstPage(ctx, table, q)
		return entry{records: records}, err
	})
	if err != nil {
		return nil, err
	}
	return cloneRecords(e.records), nil
}

// All reads every matching row through the cache.
func (c *Cache) All(ctx context.Context, table string, q store.Query, p Policy) ([]store.Record, error) {
	e, err := c.load(ctx, table, OpAll, SerializeQuery(q), p, func(ctx context.Context) (entry, error) {
		records, err := c.client.All(ctx, table, q)
		return entry{records: records}, err
	})
	if err != nil {
		return nil, err
	}
	return cloneRecords(e.records), nil
}

// Find reads one row by id through the cache.
func (c *Cache) Find(ctx context.Context, table, id string, p Policy) (store.Record, error) {
	e, err := c.load(ctx, table, OpFind, "id="+id, p, func(ctx context.Context) (entry, error) {
		rec, err := c.client.Find(ctx, table, id)
		if err != nil {
			return entry{}, err
		}
		return entry{records: []store.Record{rec}}, nil
	})
	if err != nil {
		return store.Record{}, err
	}
	return e.records[0].Clone(), nil
}

// Count returns the number of matching rows. Callers should project a
// single identifying field in q to keep the payload small.
func (c *Cache) Count(ctx context.Context, table string, q store.Query, p Policy) (int, error) {
	e, err := c.load(ctx, table, OpCount, SerializeQuery(q), p, func(ctx context.Context) (entry, error) {
		records, err := c.client.All(ctx, table, q)
		return entry{count: len(records)}, err
	})
	if err != nil {
		return 0, err
	}
	return e.count, nil
}

func (c *Cache) load(ctx context.Context, table string, op OpKind, params string, p Policy, fetch func(context.Context) (entry, error)) (entry, error) {
	if c.bypass.Load() {
		return fetch(ctx)
	}

	key := Key(table, p.Scope, op, params)
	now := c.clock.Now()
	cached, found := c.entries.Load(key)
	if found && now.Before(cached.expiresAt) {
		return cached, nil
	}

	before := c.stamp(table)
	flight := fmt.Sprintf("%s#%d.%d", key, before.epoch, before.table)
	ch := c.group.DoChan(flight, func() (any, error) {
		fresh, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return entry{}, err
		}
		if c.stamp(table) != before || c.bypass.Load() {
			return fresh, nil
		}
		fresh.expiresAt = c.clock.Now().Add(p.TTL)
		fresh.seq = c.seq.Add(1)
		c.entries.Store(key, fresh)
		// An invalidation that landed before the store could not see this
		// entry, and the result may predate its write.
		if c.stamp(table) != before || c.bypass.Load() {
			c.discard(key, fresh.seq)
		}
		return fresh, nil
	})

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(entry), nil
		}
		err = res.Err
	}

	if found && p.AllowStale && (p.MaxStale <= 0 || now.Before(cached.expiresAt.Add(p.MaxStale))) {
		c.logger.Warn("serving stale entry after refresh failure",
			zap.String("table", table),
			zap.String("op", string(op)),
			zap.Duration("age_past_expiry", now.Sub(cached.expiresAt)),
			zap.Error(err),
		)
		return cached, nil
	}
	return entry{}, err
}

// discard removes key only while it still holds the entry numbered seq.
func (c *Cache) discard(key string, seq uint64) {
	c.entries.Compute(key, func(old entry, loaded bool) (entry, bool) {
		if loaded && old.seq != seq {
			return old, false
		}
		return entry{}, true
	})
}

func (c *Cache) stamp(table string) stamp {
	gen, _ := c.generations.Load(table)
	return stamp{epoch: c.epoch.Load(), table: gen}
}

// Invalidate drops every entry for table, or only the given scopes of it.
// An empty table clears the whole cache.
func (c *Cache) Invalidate(table string, scopes ...string) {
	if table == "" {
		c.InvalidateAll()
		return
	}

	c.generations.Compute(table, func(old uint64, _ bool) (uint64, bool) {
		return old + 1, false
	})

	prefixes := []string{tablePrefix(table)}
	if len(scopes) > 0 {
		prefixes = prefixes[:0]
		for _, s := range scopes {
			prefixes = append(prefixes, scopePrefix(table, s))
		}
	}

	removed := 0
	c.entries.Range(func(key string, _ entry) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				c.entries.Delete(key)
				removed++
				break
			}
		}
		return true
	})
	c.logger.Debug("invalidated", zap.String("table", table), zap.Strings("scopes", scopes), zap.Int("removed", removed))
}

// InvalidateAll clears every entry.
func (c *Cache) InvalidateAll() {
	c.epoch.Add(1)
	c.entries.Clear()
	c.logger.Debug("invalidated all entries")
}

// SetBypass toggles the force-bypass flag. While set, every read goes to
// the store and nothing is cached.
func (c *Cache) SetBypass(on bool) {
	c.bypass.Store(on)
}

// Bypass reports whether the force-bypass flag is set.
func (c *Cache) Bypass() bool {
	return c.bypass.Load()
}

// Len returns the number of entries, live or expired.
func (c *Cache) Len() int {
	return c.entries.Size()
}

// Sweep removes entries that expired more than grace ago and returns how
// many were removed. Live entries are never touched.
func (c *Cache) Sweep(grace time.Duration) int {
	cutoff := c.clock.Now().Add(-grace)
	removed := 0
	c.entries.Range(func(key string, e entry) bool {
		if !e.expiresAt.After(cutoff) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func cloneRecords(in []store.Record) []store.Record {
	out := make([]store.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
