package models

import (
	"errors"
	"strings"
	"time"
)

// ErrMalformedRecord is returned when a stored row lacks a required field.
var ErrMalformedRecord = errors.New("malformed record")

// Status is the review state shared by clubs and access requests.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus normalizes a stored status. Unknown values are returned
// lower-cased and trimmed so they never compare equal to a known status.
func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// Decision is an admin review outcome.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision accepts "approve" or "reject".
func ParseDecision(s string) (Decision, bool) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, true
	default:
		return "", false
	}
}

// Status returns the state a decision moves a record into.
func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// TimeFormat matches the store's ISO-8601 timestamps with milliseconds.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in UTC using TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
