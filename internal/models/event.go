package models

import (
	"fmt"
	"strings"
	"time"

	"clubdir/internal/store"
)

// Events table columns. Older rows spell the ice-breaker column in lower
// camel case.
const (
	FieldEventTitle       = "eventTitle"
	FieldEventDate        = "eventDate"
	FieldEventLocation    = "eventLocation"
	FieldEventDescription = "eventDescription"
	FieldIceBreakers      = "IceBreakers"
	FieldIceBreakersOld   = "iceBreakers"
)

// Event is a club's calendar entry.
type Event struct {
	RecordID         string     `json:"recordId"`
	ClubID           string     `json:"clubId"`
	OwnerUserID      string     `json:"ownerUserId"`
	Name             string     `json:"name"`
	EventTitle       string     `json:"eventTitle"`
	EventDate        string     `json:"eventDate"`
	EventLocation    string     `json:"eventLocation"`
	EventDescription string     `json:"eventDescription"`
	IceBreakers      string     `json:"IceBreakers"`
	CreatedAt        *time.Time `json:"createdAt"`
}

// EventFromRecord parses an Events row.
func EventFromRecord(rec store.Record) (*Event, error) {
	f := rec.Fields
	e := &Event{
		RecordID:         rec.ID,
		ClubID:           strings.TrimSpace(f.String(FieldClubID)),
		OwnerUserID:      f.String(FieldOwnerUserID),
		Name:             f.String(FieldName),
		EventTitle:       f.String(FieldEventTitle),
		EventDate:        f.String(FieldEventDate),
		EventLocation:    f.String(FieldEventLocation),
		EventDescription: f.String(FieldEventDescription),
		IceBreakers:      f.String(FieldIceBreakers),
		CreatedAt:        f.Time(FieldCreatedAt),
	}
	if e.ClubID == "" {
		return nil, fmt.Errorf("event %s: missing clubId: %w", rec.ID, ErrMalformedRecord)
	}
	if e.IceBreakers == "" {
		e.IceBreakers = f.String(FieldIceBreakersOld)
	}
	if e.EventTitle == "" {
		e.EventTitle = e.Name
	}
	return e, nil
}

// EventInput is the body of an event create or update.
type EventInput struct {
	ClubID           string `json:"clubId"`
	EventTitle       string `json:"eventTitle"`
	EventDate        string `json:"eventDate"`
	EventTime        string `json:"eventTime"`
	EventLocation    string `json:"eventLocation"`
	EventDescription string `json:"eventDescription"`
	IceBreakers      string `json:"IceBreakers"`
	IceBreakersAlt   string `json:"iceBreakers"`
}

// Normalize trims every field and folds the ice-breaker spellings together.
func (in *EventInput) Normalize() {
	for _, p := range []*string{
		&in.ClubID, &in.EventTitle, &in.EventDate, &in.EventTime,
		&in.EventLocation, &in.EventDescription, &in.IceBreakers, &in.IceBreakersAlt,
	} {
		*p = strings.TrimSpace(*p)
	}
	if in.IceBreakers == "" {
		in.IceBreakers = in.IceBreakersAlt
	}
	in.IceBreakersAlt = ""
}

// Fields renders the mutable event columns. The title is mirrored into name
// so list views that only know the name column still render.
func (in EventInput) Fields() store.Fields {
	return store.Fields{
		FieldName:             in.EventTitle,
		FieldEventTitle:       in.EventTitle,
		FieldEventDate:        BuildEventDate(in.EventDate, in.EventTime),
		FieldEventLocation:    in.EventLocation,
		FieldEventDescription: in.EventDescription,
		FieldIceBreakers:      in.IceBreakers,
	}
}

var eventTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02T3:04PM", "2006-01-02T3:04 PM"}

// BuildEventDate joins a calendar date and an optional clock time into one
// timestamp. Without a time, or when the pair does not parse, the date is
// returned as given.
func BuildEventDate(date, clock string) string {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return date
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, date+"T"+clock); err == nil {
			return FormatTime(t)
		}
	}
	return date
}
