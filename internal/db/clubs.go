package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clubdir/internal/models"
	"clubdir/internal/store"
)

var (
	approvedClubsQuery = store.Query{
		Filter: store.EqFold(models.FieldStatus, string(models.StatusApproved)),
		Sort:   []store.Sort{{Field: models.FieldUpdatedAt, Desc: true}},
	}
	pendingClubsQuery = store.Query{
		Filter: store.EqFold(models.FieldStatus, string(models.StatusPending)),
		Sort:   []store.Sort{{Field: models.FieldSubmittedAt, Desc: true}},
	}
	pendingClubsCountQuery = store.Query{
		Filter: store.EqFold(models.FieldStatus, string(models.StatusPending)),
		Fields: []string{models.FieldClubID},
	}
)

// ListApprovedClubs returns the public directory, most recently updated first.
func (d *DB) ListApprovedClubs(ctx context.Context) ([]*models.Club, error) {
	recs, err := d.cache.All(ctx, d.tables.Clubs, approvedClubsQuery, d.policies.Get(PolicyClubsPublic))
	if err != nil {
		return nil, err
	}

	clubs := parseRows(d, d.tables.Clubs, recs, models.ClubFromRecord)
	public := clubs[:0]
	for _, c := range clubs {
		if c.IsPublic() {
			public = append(public, c)
		}
	}
	return public, nil
}

// GetPublicClub resolves an approved club by record id ("rec..." ids) or by
// clubId. It reads the cached directory listing.
func (d *DB) GetPublicClub(ctx context.Context, id string) (*models.Club, error) {
	clubs, err := d.ListApprovedClubs(ctx)
	if err != nil {
		return nil, err
	}

	byRecord := strings.HasPrefix(id, "rec")
	for _, c := range clubs {
		if byRecord && c.RecordID == id || !byRecord && c.ClubID == id {
			return c, nil
		}
	}
	return nil, ErrClubNotFound
}

// ListPendingClubs returns the admin review queue, newest submission first.
func (d *DB) ListPendingClubs(ctx context.Context) ([]*models.Club, error) {
	recs, err := d.cache.All(ctx, d.tables.Clubs, pendingClubsQuery, d.policies.Get(PolicyClubsPending))
	if err != nil {
		return nil, err
	}
	return parseRows(d, d.tables.Clubs, recs, models.ClubFromRecord), nil
}

// CountPendingClubs returns the length of the admin review queue.
func (d *DB) CountPendingClubs(ctx context.Context) (int, error) {
	return d.cache.Count(ctx, d.tables.Clubs, pendingClubsCountQuery, d.policies.Get(PolicyClubsPendingCount))
}

// ListClubsByClubIDs returns the clubs with the given clubIds, most recently
// updated first.
func (d *DB) ListClubsByClubIDs(ctx context.Context, clubIDs []string) ([]*models.Club, error) {
	if len(clubIDs) == 0 {
		return []*models.Club{}, nil
	}

	q := store.Query{
		Filter: store.AnyOf(models.FieldClubID, clubIDs),
		Sort:   []store.Sort{{Field: models.FieldUpdatedAt, Desc: true}},
	}
	recs, err := d.cache.All(ctx, d.tables.Clubs, q, d.policies.Get(PolicyClubsLeader))
	if err != nil {
		return nil, err
	}
	return parseRows(d, d.tables.Clubs, recs, models.ClubFromRecord), nil
}

// GetClubByClubID returns the profile row for clubID.
func (d *DB) GetClubByClubID(ctx context.Context, clubID string) (*models.Club, error) {
	q := store.Query{Filter: store.Eq(models.FieldClubID, clubID), MaxRecords: 1}
	recs, err := d.cache.FirstPage(ctx, d.tables.Clubs, q, d.policies.Get(PolicyClubsLeader))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrClubNotFound
	}
	return models.ClubFromRecord(recs[0])
}

// GetClubByOwner returns the club whose ownerUserId is userID.
func (d *DB) GetClubByOwner(ctx context.Context, userID string) (*models.Club, error) {
	q := store.Query{Filter: store.Eq(models.FieldOwnerUserID, userID), MaxRecords: 1}
	recs, err := d.cache.FirstPage(ctx, d.tables.Clubs, q, d.policies.Get(PolicyClubsLeader))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrClubNotFound
	}
	return models.ClubFromRecord(recs[0])
}

// FindClub returns a club by record id.
func (d *DB) FindClub(ctx context.Context, recordID string) (*models.Club, error) {
	rec, err := d.cache.Find(ctx, d.tables.Clubs, recordID, d.policies.Get(PolicyClubsFind))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrClubNotFound
	}
	if err != nil {
		return nil, err
	}
	return models.ClubFromRecord(rec)
}

// CreateClub inserts a club row and invalidates every cached club view.
func (d *DB) CreateClub(ctx context.Context, fields store.Fields) (*models.Club, error) {
	rec, err := d.client.Create(ctx, d.tables.Clubs, fields)
	if err != nil {
		return nil, fmt.Errorf("create club: %w", err)
	}
	d.cache.Invalidate(d.tables.Clubs)
	return models.ClubFromRecord(rec)
}

// UpdateClub patches a club row and invalidates every cached club view.
func (d *DB) UpdateClub(ctx context.Context, recordID string, fields store.Fields) (*models.Club, error) {
	rec, err := d.client.Update(ctx, d.tables.Clubs, recordID, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrClubNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update club: %w", err)
	}
	d.cache.Invalidate(d.tables.Clubs)
	return models.ClubFromRecord(rec)
}
