package models

import (
	"fmt"
	"strings"
	"time"

	"clubdir/internal/store"
)

// FieldMemberRole is the ClubMembers role column.
const FieldMemberRole = "memberRole"

// Membership links a user to a club with a role.
type Membership struct {
	RecordID   string     `json:"recordId"`
	ClubID     string     `json:"clubId"`
	UserID     string     `json:"userId"`
	MemberRole Role       `json:"memberRole"`
	CreatedAt  *time.Time `json:"createdAt"`
}

// CanManage returns true if the membership grants club management. A row
// without a role grants nothing.
func (m *Membership) CanManage() bool {
	return m.MemberRole == RoleLeader || m.MemberRole == RoleAdmin
}

// MembershipFromRecord parses a ClubMembers row.
func MembershipFromRecord(rec store.Record) (*Membership, error) {
	f := rec.Fields
	m := &Membership{
		RecordID:   rec.ID,
		ClubID:     strings.TrimSpace(f.String(FieldClubID)),
		UserID:     strings.TrimSpace(f.String(FieldUserID)),
		MemberRole: Role(strings.ToLower(strings.TrimSpace(f.String(FieldMemberRole)))),
		CreatedAt:  f.Time(FieldCreatedAt),
	}
	if m.ClubID == "" || m.UserID == "" {
		return nil, fmt.Errorf("membership %s: missing clubId or userId: %w", rec.ID, ErrMalformedRecord)
	}
	return m, nil
}

// MembershipFields renders a new ClubMembers row.
func MembershipFields(clubID, userID string, role Role, now time.Time) store.Fields {
	return store.Fields{
		FieldClubID:     clubID,
		FieldUserID:     userID,
		FieldMemberRole: string(role),
		FieldCreatedAt:  FormatTime(now),
	}
}
