package models

import "strings"

// Role is an account or membership role.
type Role string

const (
	RoleLeader Role = "leader"
	RoleAdmin  Role = "admin"
)

// ParseRole normalizes a stored role; empty defaults to leader.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleLeader
	}
	return r
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
}

// HasRole returns true if the caller holds one of roles.
func (p *Principal) HasRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
