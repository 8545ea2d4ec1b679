package cache

import (
	"context"

	"clubdir/internal/store"
)

// Counted decorates a store client so that every call is noted in Stats
// before it is made, whether it succeeds or not.
type Counted struct {
	next  store.Client
	stats *Stats
}

var _ store.Client = (*Counted)(nil)

// NewCounted wraps next.
func NewCounted(next store.Client, stats *Stats) *Counted {
	return &Counted{next: next, stats: stats}
}

func (c *Counted) Create(ctx context.Context, table string, fields store.Fields) (store.Record, error) {
	c.stats.Note(table)
	return c.next.Create(ctx, table, fields)
}

func (c *Counted) Update(ctx context.Context, table, id string, fields store.Fields) (store.Record, error) {
	c.stats.Note(table)
	return c.next.Update(ctx, table, id, fields)
}

func (c *Counted) Find(ctx context.Context, table, id string) (store.Record, error) {
	c.stats.Note(table)
	return c.next.Find(ctx, table, id)
}

func (c *Counted) FirstPage(ctx context.Context, table string, q store.Query) ([]store.Record, error) {
	c.stats.Note(table)
	return c.next.FirstPage(ctx, table, q)
}

func (c *Counted) All(ctx context.Context, table string, q store.Query) ([]store.Record, error) {
	c.stats.Note(table)
	return c.next.All(ctx, table, q)
}
