package models

import (
	"fmt"
	"strings"
	"time"

	"clubdir/internal/store"
)

// AccessRequests table columns.
const (
	FieldRequesterUserID = "requesterUserId"
	FieldRequesterEmail  = "requesterEmail"
	FieldMessage         = "message"
)

// AccessRequest is a user's request to become a leader of a club.
type AccessRequest struct {
	RecordID        string     `json:"recordId"`
	ClubID          string     `json:"clubId"`
	RequesterUserID string     `json:"requesterUserId"`
	RequesterEmail  string     `json:"requesterEmail"`
	Message         string     `json:"message"`
	Status          Status     `json:"status"`
	ReviewNotes     string     `json:"reviewNotes"`
	CreatedAt       *time.Time `json:"createdAt"`
	ReviewedAt      *time.Time `json:"reviewedAt"`
}

// AccessRequestFromRecord parses an AccessRequests row. A missing status
// reads as pending.
func AccessRequestFromRecord(rec store.Record) (*AccessRequest, error) {
	f := rec.Fields
	r := &AccessRequest{
		RecordID:        rec.ID,
		ClubID:          strings.TrimSpace(f.String(FieldClubID)),
		RequesterUserID: strings.TrimSpace(f.String(FieldRequesterUserID)),
		RequesterEmail:  f.String(FieldRequesterEmail),
		Message:         f.String(FieldMessage),
		Status:          ParseStatus(f.String(FieldStatus)),
		ReviewNotes:     f.String(FieldReviewNotes),
		CreatedAt:       f.Time(FieldCreatedAt),
		ReviewedAt:      f.Time(FieldReviewedAt),
	}
	if r.ClubID == "" || r.RequesterUserID == "" {
		return nil, fmt.Errorf("access request %s: missing clubId or requesterUserId: %w", rec.ID, ErrMalformedRecord)
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return r, nil
}

// AccessRequestFields renders a new pending request.
func AccessRequestFields(p *Principal, clubID, message string, now time.Time) store.Fields {
	return store.Fields{
		FieldClubID:          clubID,
		FieldRequesterUserID: p.UserID,
		FieldRequesterEmail:  p.Email,
		FieldMessage:         message,
		FieldStatus:          string(StatusPending),
		FieldCreatedAt:       FormatTime(now),
	}
}
