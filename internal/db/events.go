package db

import (
	"context"
	"errors"
	"fmt"

	"clubdir/internal/models"
	"clubdir/internal/store"
)

// ListEventsByClubIDs returns the events of the given clubs, latest date first.
func (d *DB) ListEventsByClubIDs(ctx context.Context, clubIDs []string) ([]*models.Event, error) {
	if len(clubIDs) == 0 {
		return []*models.Event{}, nil
	}

	q := store.Query{
		Filter: store.AnyOf(models.FieldClubID, clubIDs),
		Sort:   []store.Sort{{Field: models.FieldEventDate, Desc: true}},
	}
	recs, err := d.cache.All(ctx, d.tables.Events, q, d.policies.Get(PolicyEventsByClubs))
	if err != nil {
		return nil, err
	}
	return parseRows(d, d.tables.Events, recs, models.EventFromRecord), nil
}

// CreateEvent inserts an event and invalidates the events table.
func (d *DB) CreateEvent(ctx context.Context, fields store.Fields) (*models.Event, error) {
	rec, err := d.client.Create(ctx, d.tables.Events, fields)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	d.cache.Invalidate(d.tables.Events)
	return models.EventFromRecord(rec)
}

// UpdateEvent patches an event and invalidates the events table.
func (d *DB) UpdateEvent(ctx context.Context, recordID string, fields store.Fields) (*models.Event, error) {
	rec, err := d.client.Update(ctx, d.tables.Events, recordID, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	d.cache.Invalidate(d.tables.Events)
	return models.EventFromRecord(rec)
}
