package validation

import (
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"valid https", "https://example.com", true, ""},
		{"valid http", "http://example.com", true, ""},
		{"valid with path", "https://example.com/path/to/page", true, ""},
		{"valid with query", "https://example.com?foo=bar", true, ""},
		{"empty string", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"data scheme", "data:text/html,<script>alert(1)</script>", false, "URL must use http:// or https:// scheme"},
		{"discord invite without scheme", "discord.gg/abc", false, "URL must use http:// or https:// scheme"},
		{"missing host", "https://", false, "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			if valid != tt.valid {
				t.Errorf("ValidateURL(%q) valid = %v, want %v", tt.url, valid, tt.valid)
			}
			if msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"lee@example.com", true},
		{"", false},
		{"not-an-email", false},
		{"Lee <lee@example.com>", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if valid, _ := ValidateEmail(tt.email); valid != tt.valid {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, valid, tt.valid)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"", false},
		{"short", false},
		{"longenough", true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if valid, _ := ValidatePassword(tt.password); valid != tt.valid {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, valid, tt.valid)
			}
		})
	}
}

type profile struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"contactEmail" validate:"omitempty,email"`
	Website string `json:"websiteUrl" validate:"omitempty,weburl"`
	Notes   string `json:"notes" validate:"max=5"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      profile
		wantErr string
	}{
		{"valid", profile{Name: "Chess", Website: "https://chess.club"}, ""},
		{"missing name", profile{}, "name is required."},
		{"bad email", profile{Name: "x", Email: "nope"}, "contactEmail must be a valid email address."},
		{"bad url", profile{Name: "x", Website: "javascript:alert(1)"}, "websiteUrl must use http:// or https://."},
		{"too long", profile{Name: "x", Notes: "abcdefg"}, "notes must be at most 5 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Struct() error = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Struct() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
