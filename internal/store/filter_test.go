package store

import (
	"testing"
)

func TestFilterFormula(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"equality", Eq("status", "pending"), `{status} = "pending"`},
		{"folded", EqFold("status", " Pending "), `LOWER(TRIM({status})) = "pending"`},
		{"and", And(Eq("clubId", "x"), Eq("userId", "y")), `AND({clubId} = "x", {userId} = "y")`},
		{"or", AnyOf("clubId", []string{"a", "b"}), `OR({clubId} = "a", {clubId} = "b")`},
		{"empty or", Or(), `FALSE()`},
		{"empty and", And(), `TRUE()`},
		{"quote escaped", Eq("name", `say "hi"`), `{name} = "say \"hi\""`},
		{"backslash escaped", Eq("name", `a\b`), `{name} = "a\\b"`},
		{"injection stays inside the literal", Eq("userId", `x") , TRUE(), ("`), `{userId} = "x\") , TRUE(), (\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Formula(); got != tt.want {
				t.Errorf("Formula() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterMatch(t *testing.T) {
	row := Fields{"status": " Approved ", "clubId": "c1", "count": 3}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"exact mismatch on untrimmed value", Eq("status", "approved"), false},
		{"folded match", EqFold("status", "approved"), true},
		{"number stringified", Eq("count", "3"), true},
		{"missing field equals empty", Eq("missing", ""), true},
		{"and all", And(Eq("clubId", "c1"), EqFold("status", "APPROVED")), true},
		{"and one fails", And(Eq("clubId", "c2"), EqFold("status", "approved")), false},
		{"or any", AnyOf("clubId", []string{"c9", "c1"}), true},
		{"or none", AnyOf("clubId", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(row); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldsTime(t *testing.T) {
	f := Fields{
		"full":  "2025-03-01T10:00:00.000Z",
		"date":  "2025-03-01",
		"empty": "",
		"bad":   "yesterday",
	}

	if got := f.Time("full"); got == nil || got.Hour() != 10 {
		t.Errorf("Time(full) = %v, want 10:00", got)
	}
	if got := f.Time("date"); got == nil || got.Day() != 1 {
		t.Errorf("Time(date) = %v, want March 1", got)
	}
	for _, key := range []string{"empty", "bad", "missing"} {
		if got := f.Time(key); got != nil {
			t.Errorf("Time(%s) = %v, want nil", key, got)
		}
	}
}

func TestNewRecordID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewRecordID()
		if len(id) != 17 || id[:3] != "rec" {
			t.Fatalf("NewRecordID() = %q, want rec + 14 chars", id)
		}
		if seen[id] {
			t.Fatalf("NewRecordID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}
