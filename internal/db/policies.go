package db

import (
	"sort"
	"time"

	"clubdir/internal/cache"
	"clubdir/internal/config"
)

// Named cache policies, one per read pattern.
const (
	PolicyClubsPublic       = "clubs.public"
	PolicyClubsPending      = "clubs.pending"
	PolicyClubsPendingCount = "clubs.pending_count"
	PolicyClubsLeader       = "clubs.leader"
	PolicyClubsFind         = "clubs.find"
	PolicyMembersByUser     = "members.by_user"
	PolicyMembersPair       = "members.pair"
	PolicyRequestsLatest    = "requests.latest"
	PolicyRequestsMine      = "requests.mine"
	PolicyRequestsPending   = "requests.pending"
	PolicyRequestsFind      = "requests.find"
	PolicyEventsByClubs     = "events.by_clubs"
	PolicyUsersByEmail      = "users.by_email"
	PolicyUsersAdmins       = "users.admins"
)

// Policies maps a policy name to its cache settings.
type Policies map[string]cache.Policy

// DefaultPolicies returns the built-in policy table. Public and admin queue
// reads may fall back to a stale entry; reads used for authorization never do.
func DefaultPolicies() Policies {
	return Policies{
		PolicyClubsPublic:       {TTL: 600 * time.Second, Scope: cache.ScopePublic, AllowStale: true},
		PolicyClubsPending:      {TTL: 60 * time.Second, Scope: cache.ScopeAdmin, AllowStale: true},
		PolicyClubsPendingCount: {TTL: 60 * time.Second, Scope: cache.ScopeAdmin, AllowStale: true},
		PolicyClubsLeader:       {TTL: 20 * time.Second, Scope: cache.ScopeLeader},
		PolicyClubsFind:         {TTL: 5 * time.Second, Scope: cache.ScopeAdmin},
		PolicyMembersByUser:     {TTL: 300 * time.Second},
		PolicyMembersPair:       {TTL: 2 * time.Second},
		PolicyRequestsLatest:    {TTL: 600 * time.Second},
		PolicyRequestsMine:      {TTL: 60 * time.Second},
		PolicyRequestsPending:   {TTL: 30 * time.Second, Scope: cache.ScopeAdmin, AllowStale: true},
		PolicyRequestsFind:      {TTL: 5 * time.Second, Scope: cache.ScopeAdmin},
		PolicyEventsByClubs:     {TTL: 3600 * time.Second, Scope: cache.ScopeLeader},
		PolicyUsersByEmail:      {TTL: 60 * time.Second},
		PolicyUsersAdmins:       {TTL: 600 * time.Second, Scope: cache.ScopeAdmin},
	}
}

// Get returns the named policy. Unknown names get a zero TTL, which
// caches nothing.
func (p Policies) Get(name string) cache.Policy {
	return p[name]
}

// WithMaxStale sets maxStale on every allow-stale policy that has no bound.
func (p Policies) WithMaxStale(maxStale time.Duration) Policies {
	for name, pol := range p {
		if pol.AllowStale && pol.MaxStale == 0 {
			pol.MaxStale = maxStale
			p[name] = pol
		}
	}
	return p
}

// SweepGrace returns the longest MaxStale of any allow-stale policy, which
// is how long an expired entry must survive to remain a usable fallback.
// ok is false when some allow-stale policy is unbounded.
func (p Policies) SweepGrace() (grace time.Duration, ok bool) {
	for _, pol := range p {
		if !pol.AllowStale {
			continue
		}
		if pol.MaxStale <= 0 {
			return 0, false
		}
		grace = max(grace, pol.MaxStale)
	}
	return grace, true
}

// ApplyOverrides merges YAML overrides into p and returns the names that
// matched no known policy.
func (p Policies) ApplyOverrides(overrides map[string]config.PolicyOverride) []string {
	var unknown []string
	for name, o := range overrides {
		pol, ok := p[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if o.TTL != nil {
			pol.TTL = o.TTL.Duration
		}
		if o.Scope != nil {
			pol.Scope = *o.Scope
		}
		if o.AllowStale != nil {
			pol.AllowStale = *o.AllowStale
		}
		if o.MaxStale != nil {
			pol.MaxStale = o.MaxStale.Duration
		}
		p[name] = pol
	}
	sort.Strings(unknown)
	return unknown
}
