package db

import (
	"slices"
	"testing"
	"time"

	"clubdir/internal/cache"
	"clubdir/internal/config"
)

func TestDefaultPolicies(t *testing.T) {
	p := DefaultPolicies()

	tests := []struct {
		name       string
		ttl        time.Duration
		scope      string
		allowStale bool
	}{
		{PolicyClubsPublic, 600 * time.Second, cache.ScopePublic, true},
		{PolicyClubsPending, 60 * time.Second, cache.ScopeAdmin, true},
		{PolicyMembersByUser, 300 * time.Second, "", false},
		{PolicyMembersPair, 2 * time.Second, "", false},
		{PolicyRequestsLatest, 600 * time.Second, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Get(tt.name)
			if got.TTL != tt.ttl {
				t.Errorf("TTL = %v, want %v", got.TTL, tt.ttl)
			}
			if got.Scope != tt.scope {
				t.Errorf("Scope = %q, want %q", got.Scope, tt.scope)
			}
			if got.AllowStale != tt.allowStale {
				t.Errorf("AllowStale = %v, want %v", got.AllowStale, tt.allowStale)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	ttl := config.Duration{Duration: 90 * time.Second}
	stale := false
	p := DefaultPolicies()

	unknown := p.ApplyOverrides(map[string]config.PolicyOverride{
		PolicyClubsPublic: {TTL: &ttl, AllowStale: &stale},
		"clubs.bogus":     {TTL: &ttl},
	})

	if !slices.Equal(unknown, []string{"clubs.bogus"}) {
		t.Errorf("ApplyOverrides() unknown = %v, want [clubs.bogus]", unknown)
	}
	got := p.Get(PolicyClubsPublic)
	if got.TTL != 90*time.Second {
		t.Errorf("TTL = %v, want 90s", got.TTL)
	}
	if got.AllowStale {
		t.Error("AllowStale = true, want false")
	}
	if got.Scope != cache.ScopePublic {
		t.Errorf("Scope = %q, want %q", got.Scope, cache.ScopePublic)
	}
}

func TestSweepGrace(t *testing.T) {
	longer := config.Duration{Duration: 3 * time.Hour}
	p := DefaultPolicies()
	p.ApplyOverrides(map[string]config.PolicyOverride{
		PolicyRequestsPending: {MaxStale: &longer},
	})

	if _, ok := p.SweepGrace(); ok {
		t.Error("SweepGrace() ok = true with unbounded stale policies, want false")
	}

	p = p.WithMaxStale(time.Hour)
	if grace, ok := p.SweepGrace(); !ok || grace != 3*time.Hour {
		t.Errorf("SweepGrace() = %v, %v, want 3h, true", grace, ok)
	}

	if grace, ok := (Policies{PolicyMembersPair: {TTL: time.Second}}).SweepGrace(); !ok || grace != 0 {
		t.Errorf("SweepGrace() without stale policies = %v, %v, want 0, true", grace, ok)
	}
}

func TestWithMaxStale(t *testing.T) {
	p := DefaultPolicies().WithMaxStale(time.Hour)
	if got := p.Get(PolicyClubsPublic).MaxStale; got != time.Hour {
		t.Errorf("clubs.public MaxStale = %v, want 1h", got)
	}
	if got := p.Get(PolicyMembersPair).MaxStale; got != 0 {
		t.Errorf("members.pair MaxStale = %v, want 0", got)
	}
}
