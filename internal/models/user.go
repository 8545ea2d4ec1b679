package models

import (
	"fmt"
	"strings"
	"time"

	"clubdir/internal/store"
)

// Users table columns.
const (
	FieldUserID       = "userId"
	FieldEmail        = "email"
	FieldPasswordHash = "passwordHash"
	FieldRole         = "role"
	FieldDisplayName  = "name"
	FieldSubject      = "oidcSubject"
)

// User is a directory account.
type User struct {
	RecordID     string     `json:"recordId"`
	UserID       string     `json:"userId"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	PasswordHash string     `json:"-"`
	Subject      string     `json:"-"` // OIDC subject, empty for password accounts
	Role         Role       `json:"role"`
	CreatedAt    *time.Time `json:"createdAt"`
}

// Principal returns the caller identity for u.
func (u *User) Principal() *Principal {
	return &Principal{UserID: u.UserID, Role: u.Role, Email: u.Email}
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserFromRecord parses a Users row.
func UserFromRecord(rec store.Record) (*User, error) {
	f := rec.Fields
	u := &User{
		RecordID:     rec.ID,
		UserID:       strings.TrimSpace(f.String(FieldUserID)),
		Email:        NormalizeEmail(f.String(FieldEmail)),
		Name:         f.String(FieldDisplayName),
		PasswordHash: f.String(FieldPasswordHash),
		Subject:      f.String(FieldSubject),
		Role:         ParseRole(f.String(FieldRole)),
		CreatedAt:    f.Time(FieldCreatedAt),
	}
	if u.UserID == "" || u.Email == "" {
		return nil, fmt.Errorf("user %s: missing userId or email: %w", rec.ID, ErrMalformedRecord)
	}
	return u, nil
}
