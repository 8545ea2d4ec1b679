package models

import (
	"errors"
	"testing"
	"time"

	"clubdir/internal/store"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"approved", StatusApproved},
		{" Approved ", StatusApproved},
		{"PENDING", StatusPending},
		{"", Status("")},
		{"archived", Status("archived")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseStatus(tt.input); got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input  string
		want   Decision
		ok     bool
		status Status
	}{
		{"approve", DecisionApprove, true, StatusApproved},
		{"Reject", DecisionReject, true, StatusRejected},
		{"maybe", "", false, ""},
		{"", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDecision(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("ParseDecision(%q) = %q, %v, want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
			if ok && got.Status() != tt.status {
				t.Errorf("Status() = %q, want %q", got.Status(), tt.status)
			}
		})
	}
}

func TestClubFromRecord(t *testing.T) {
	t.Run("legacy category wins", func(t *testing.T) {
		c, err := ClubFromRecord(store.Record{ID: "recA", Fields: store.Fields{
			FieldName: "Chess", FieldCategoryOld: "Games", FieldCategory: "games", FieldStatus: "Approved",
		}})
		if err != nil {
			t.Fatalf("ClubFromRecord() error = %v", err)
		}
		if c.Category != "Games" {
			t.Errorf("Category = %q, want Games", c.Category)
		}
		if !c.IsPublic() {
			t.Errorf("Status = %q, want approved", c.Status)
		}
	})

	t.Run("lowercase category", func(t *testing.T) {
		c, err := ClubFromRecord(store.Record{ID: "recB", Fields: store.Fields{FieldName: "Go", FieldCategory: "tech"}})
		if err != nil {
			t.Fatalf("ClubFromRecord() error = %v", err)
		}
		if c.Category != "tech" {
			t.Errorf("Category = %q, want tech", c.Category)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := ClubFromRecord(store.Record{ID: "recC", Fields: store.Fields{FieldClubID: "c1"}})
		if !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("error = %v, want ErrMalformedRecord", err)
		}
	})

	t.Run("timestamps", func(t *testing.T) {
		c, err := ClubFromRecord(store.Record{ID: "recD", Fields: store.Fields{
			FieldName: "Go", FieldReviewedAt: "", FieldSubmittedAt: "2025-03-01T12:00:00.000Z",
		}})
		if err != nil {
			t.Fatalf("ClubFromRecord() error = %v", err)
		}
		if c.ReviewedAt != nil {
			t.Errorf("ReviewedAt = %v, want nil", c.ReviewedAt)
		}
		if c.SubmittedAt == nil || c.SubmittedAt.Hour() != 12 {
			t.Errorf("SubmittedAt = %v", c.SubmittedAt)
		}
	})
}

func TestEditStatusFields(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		current    Status
		editor     Role
		preserve   bool
		wantStatus string
		resubmit   bool
	}{
		{"leader edit resubmits", StatusApproved, RoleLeader, true, "pending", true},
		{"admin keeps approved", StatusApproved, RoleAdmin, true, "approved", false},
		{"admin keeps rejected", StatusRejected, RoleAdmin, true, "rejected", false},
		{"admin defaults unset to approved", "", RoleAdmin, true, "approved", false},
		{"admin resubmit", StatusApproved, RoleAdmin, false, "pending", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := EditStatusFields(tt.current, tt.editor, tt.preserve, now)
			if got := f.String(FieldStatus); got != tt.wantStatus {
				t.Errorf("status = %q, want %q", got, tt.wantStatus)
			}
			v, has := f[FieldReviewedAt]
			if tt.resubmit {
				if !has || v != nil {
					t.Errorf("reviewedAt = %v (present %v), want explicit null", v, has)
				}
				if f.String(FieldSubmittedAt) == "" {
					t.Error("submittedAt not set on resubmit")
				}
			} else if has {
				t.Errorf("admin edit should not touch reviewedAt, got %v", v)
			}
		})
	}
}

func TestDecisionFields(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f := DecisionFields(DecisionReject, "dup", now)
	if f.String(FieldStatus) != "rejected" || f.String(FieldReviewNotes) != "dup" {
		t.Errorf("DecisionFields() = %v", f)
	}
	if f.String(FieldReviewedAt) != "2025-03-01T12:00:00.000Z" {
		t.Errorf("reviewedAt = %q", f.String(FieldReviewedAt))
	}
}

func TestClubInput_Normalize(t *testing.T) {
	in := ClubInput{Name: "  Chess  ", WebsiteURL: " https://x.org "}
	in.Normalize()
	if in.Name != "Chess" || in.WebsiteURL != "https://x.org" {
		t.Errorf("Normalize() = %+v", in)
	}
}
