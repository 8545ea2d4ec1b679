package db

import (
	"context"
	"errors"
	"fmt"

	"clubdir/internal/models"
	"clubdir/internal/store"
)

// GetUserByEmail looks a user up by normalized email.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := store.Query{
		Filter:     store.EqFold(models.FieldEmail, models.NormalizeEmail(email)),
		MaxRecords: 1,
	}
	recs, err := d.cache.FirstPage(ctx, d.tables.Users, q, d.policies.Get(PolicyUsersByEmail))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrUserNotFound
	}
	return models.UserFromRecord(recs[0])
}

// ListAdminUsers returns every account with the admin role.
func (d *DB) ListAdminUsers(ctx context.Context) ([]*models.User, error) {
	q := store.Query{Filter: store.EqFold(models.FieldRole, string(models.RoleAdmin))}
	recs, err := d.cache.All(ctx, d.tables.Users, q, d.policies.Get(PolicyUsersAdmins))
	if err != nil {
		return nil, err
	}
	return parseRows(d, d.tables.Users, recs, models.UserFromRecord), nil
}

// CreateUser inserts a user row and invalidates the users table.
func (d *DB) CreateUser(ctx context.Context, fields store.Fields) (*models.User, error) {
	rec, err := d.client.Create(ctx, d.tables.Users, fields)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	d.cache.Invalidate(d.tables.Users)
	return models.UserFromRecord(rec)
}

// UpdateUser patches a user row and invalidates the users table.
func (d *DB) UpdateUser(ctx context.Context, recordID string, fields store.Fields) (*models.User, error) {
	rec, err := d.client.Update(ctx, d.tables.Users, recordID, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	d.cache.Invalidate(d.tables.Users)
	return models.UserFromRecord(rec)
}
