package services

import (
	"context"
	"errors"

	"clubdir/internal/db"
	"clubdir/internal/models"
)

// RequireRole fails with ErrUnauthorized when there is no principal and
// ErrForbidden when its role is not in roles.
func RequireRole(p *models.Principal, roles ...models.Role) error {
	if p == nil || p.UserID == "" {
		return ErrUnauthorized
	}
	if !p.HasRole(roles...) {
		return ErrForbidden
	}
	return nil
}

// RequireLeader allows leaders and admins.
func RequireLeader(p *models.Principal) error {
	return RequireRole(p, models.RoleLeader, models.RoleAdmin)
}

// RequireAdmin allows admins only.
func RequireAdmin(p *models.Principal) error {
	return RequireRole(p, models.RoleAdmin)
}

// Authorizer answers per-club membership questions.
type Authorizer struct {
	db *db.DB
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(d *db.DB) *Authorizer {
	return &Authorizer{db: d}
}

// IsLeaderOrAdminForClub returns true if userID holds a leader or admin
// membership on clubID.
func (a *Authorizer) IsLeaderOrAdminForClub(ctx context.Context, userID, clubID string) (bool, error) {
	m, err := a.db.GetMembership(ctx, clubID, userID)
	if errors.Is(err, db.ErrMembershipNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.CanManage(), nil
}

// UserClubIDs returns the clubIds where userID is a leader or admin, in
// membership order without duplicates.
func (a *Authorizer) UserClubIDs(ctx context.Context, userID string) ([]string, error) {
	memberships, err := a.db.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(memberships))
	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		if !m.CanManage() || seen[m.ClubID] {
			continue
		}
		seen[m.ClubID] = true
		ids = append(ids, m.ClubID)
	}
	return ids, nil
}

// requireClubMember checks role and membership together.
func (a *Authorizer) requireClubMember(ctx context.Context, p *models.Principal, clubID string) error {
	if err := RequireLeader(p); err != nil {
		return err
	}
	ok, err := a.IsLeaderOrAdminForClub(ctx, p.UserID, clubID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
