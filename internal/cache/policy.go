package cache

import "time"

// Audience scopes partition cached views of the same table.
const (
	ScopePublic = "public"
	ScopeAdmin  = "admin"
	ScopeLeader = "leader"
)

// Policy controls how one read is cached.
type Policy struct {
	TTL   time.Duration
	Scope string
	// AllowStale serves an expired entry when the refresh fails.
	AllowStale bool
	// MaxStale bounds how long past expiry a stale entry may be served.
	// Zero means unbounded.
	MaxStale time.Duration
}
