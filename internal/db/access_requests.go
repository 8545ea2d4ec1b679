package db

import (
	"context"
	"errors"
	"fmt"

	"clubdir/internal/models"
	"clubdir/internal/store"
)

// mineLimit bounds the per-user request history scan.
const mineLimit = 500

var newestFirst = []store.Sort{{Field: models.FieldCreatedAt, Desc: true}}

// LatestAccessRequest returns the newest request for (clubID, userID).
func (d *DB) LatestAccessRequest(ctx context.Context, clubID, userID string) (*models.AccessRequest, error) {
	q := store.Query{
		Filter: store.And(
			store.Eq(models.FieldClubID, clubID),
			store.Eq(models.FieldRequesterUserID, userID),
		),
		Sort:       newestFirst,
		MaxRecords: 1,
	}
	recs, err := d.cache.FirstPage(ctx, d.tables.AccessRequests, q, d.policies.Get(PolicyRequestsLatest))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrAccessRequestNotFound
	}
	return models.AccessRequestFromRecord(recs[0])
}

// ListAccessRequestsByUser returns userID's requests, newest first.
func (d *DB) ListAccessRequestsByUser(ctx context.Context, userID string) ([]*models.AccessRequest, error) {
	q := store.Query{
		Filter:     store.Eq(models.FieldRequesterUserID, userID),
		Sort:       newestFirst,
		MaxRecords: mineLimit,
	}
	recs, err := d.cache.FirstPage(ctx, d.tables.AccessRequests, q, d.policies.Get(PolicyRequestsMine))
	if err != nil {
		return nil, err
	}
	return parseRows(d, d.tables.AccessRequests, recs, models.AccessRequestFromRecord), nil
}

// ListPendingAccessRequests returns the admin review queue, newest first.
func (d *DB) ListPendingAccessRequests(ctx context.Context) ([]*models.AccessRequest, error) {
	q := store.Query{
		Filter: store.EqFold(models.FieldStatus, string(models.StatusPending)),
		Sort:   newestFirst,
	}
	recs, err := d.cache.All(ctx, d.tables.AccessRequests, q, d.policies.Get(PolicyRequestsPending))
	if err != nil {
		return nil, err
	}
	return parseRows(d, d.tables.AccessRequests, recs, models.AccessRequestFromRecord), nil
}

// FindAccessRequest returns the raw request row. The caller parses it so
// that a malformed row can be reported as a validation failure.
func (d *DB) FindAccessRequest(ctx context.Context, recordID string) (store.Record, error) {
	rec, err := d.cache.Find(ctx, d.tables.AccessRequests, recordID, d.policies.Get(PolicyRequestsFind))
	if errors.Is(err, store.ErrNotFound) {
		return store.Record{}, ErrAccessRequestNotFound
	}
	return rec, err
}

// CreateAccessRequest inserts a request and invalidates the requests table.
func (d *DB) CreateAccessRequest(ctx context.Context, fields store.Fields) (*models.AccessRequest, error) {
	rec, err := d.client.Create(ctx, d.tables.AccessRequests, fields)
	if err != nil {
		return nil, fmt.Errorf("create access request: %w", err)
	}
	d.cache.Invalidate(d.tables.AccessRequests)
	return models.AccessRequestFromRecord(rec)
}

// UpdateAccessRequest patches a request and invalidates the requests table.
func (d *DB) UpdateAccessRequest(ctx context.Context, recordID string, fields store.Fields) (*models.AccessRequest, error) {
	rec, err := d.client.Update(ctx, d.tables.AccessRequests, recordID, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccessRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update access request: %w", err)
	}
	d.cache.Invalidate(d.tables.AccessRequests)
	return models.AccessRequestFromRecord(rec)
}
