package db

import (
	"context"
	"fmt"

	"clubdir/internal/models"
	"clubdir/internal/store"
)

// ListMembershipsByUser returns every membership row for userID.
func (d *DB) ListMembershipsByUser(ctx context.Context, userID string) ([]*models.Membership, error) {
	q := store.Query{Filter: store.Eq(models.FieldUserID, userID)}
	recs, err := d.cache.All(ctx, d.tables.ClubMembers, q, d.policies.Get(PolicyMembersByUser))
	if err != nil {
		return nil, err
	}
	return parseRows(d, d.tables.ClubMembers, recs, models.MembershipFromRecord), nil
}

// GetMembership returns the membership for the (clubID, userID) pair.
func (d *DB) GetMembership(ctx context.Context, clubID, userID string) (*models.Membership, error) {
	q := store.Query{
		Filter: store.And(
			store.Eq(models.FieldClubID, clubID),
			store.Eq(models.FieldUserID, userID),
		),
		MaxRecords: 1,
	}
	recs, err := d.cache.FirstPage(ctx, d.tables.ClubMembers, q, d.policies.Get(PolicyMembersPair))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrMembershipNotFound
	}
	return models.MembershipFromRecord(recs[0])
}

// CreateMembership inserts a membership row and invalidates the members table.
func (d *DB) CreateMembership(ctx context.Context, clubID, userID string, role models.Role) (*models.Membership, error) {
	fields := models.MembershipFields(clubID, userID, role, d.clock.Now())
	rec, err := d.client.Create(ctx, d.tables.ClubMembers, fields)
	if err != nil {
		return nil, fmt.Errorf("create membership: %w", err)
	}
	d.cache.Invalidate(d.tables.ClubMembers)
	return models.MembershipFromRecord(rec)
}
