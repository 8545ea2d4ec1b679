package models

import (
	"fmt"
	"strings"
	"time"

	"clubdir/internal/store"
)

// Club table columns.
const (
	FieldClubID       = "clubId"
	FieldOwnerUserID  = "ownerUserId"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldCategory     = "category"
	FieldCategoryOld  = "Category"
	FieldContactName  = "contactName"
	FieldContactEmail = "contactEmail"
	FieldCalendarURL  = "calendarUrl"
	FieldDiscordURL   = "discordUrl"
	FieldWebsiteURL   = "websiteUrl"
	FieldInstagramURL = "instagramUrl"
	FieldLinkedinURL  = "linkedinUrl"
	FieldStatus       = "status"
	FieldSubmittedAt  = "submittedAt"
	FieldReviewedAt   = "reviewedAt"
	FieldReviewNotes  = "reviewNotes"
	FieldUpdatedAt    = "updatedAt"
	FieldCreatedAt    = "createdAt"
)

// Club is one organization's public profile.
type Club struct {
	RecordID     string     `json:"recordId"`
	ClubID       string     `json:"clubId"`
	OwnerUserID  string     `json:"ownerUserId,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	ContactName  string     `json:"contactName"`
	ContactEmail string     `json:"contactEmail"`
	CalendarURL  string     `json:"calendarUrl"`
	DiscordURL   string     `json:"discordUrl"`
	WebsiteURL   string     `json:"websiteUrl"`
	InstagramURL string     `json:"instagramUrl"`
	LinkedinURL  string     `json:"linkedinUrl"`
	Status       Status     `json:"status"`
	SubmittedAt  *time.Time `json:"submittedAt"`
	ReviewedAt   *time.Time `json:"reviewedAt"`
	ReviewNotes  string     `json:"reviewNotes"`
	UpdatedAt    *time.Time `json:"updatedAt"`
}

// IsPublic returns true if the club may appear in the public directory.
func (c *Club) IsPublic() bool {
	return c.Status == StatusApproved
}

// ClubFromRecord parses a Clubs row. The legacy "Category" column wins over
// "category" when both are present.
func ClubFromRecord(rec store.Record) (*Club, error) {
	f := rec.Fields
	name := strings.TrimSpace(f.String(FieldName))
	if name == "" {
		return nil, fmt.Errorf("club %s: missing name: %w", rec.ID, ErrMalformedRecord)
	}

	category := f.String(FieldCategoryOld)
	if _, ok := f[FieldCategoryOld]; !ok {
		category = f.String(FieldCategory)
	}

	return &Club{
		RecordID:     rec.ID,
		ClubID:       f.String(FieldClubID),
		OwnerUserID:  f.String(FieldOwnerUserID),
		Name:         name,
		Description:  f.String(FieldDescription),
		Category:     category,
		ContactName:  f.String(FieldContactName),
		ContactEmail: f.String(FieldContactEmail),
		CalendarURL:  f.String(FieldCalendarURL),
		DiscordURL:   f.String(FieldDiscordURL),
		WebsiteURL:   f.String(FieldWebsiteURL),
		InstagramURL: f.String(FieldInstagramURL),
		LinkedinURL:  f.String(FieldLinkedinURL),
		Status:       ParseStatus(f.String(FieldStatus)),
		SubmittedAt:  f.Time(FieldSubmittedAt),
		ReviewedAt:   f.Time(FieldReviewedAt),
		ReviewNotes:  f.String(FieldReviewNotes),
		UpdatedAt:    f.Time(FieldUpdatedAt),
	}, nil
}

// ClubInput is the editable part of a club profile.
type ClubInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Category     string `json:"category" validate:"max=100"`
	ContactName  string `json:"contactName" validate:"max=200"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	CalendarURL  string `json:"calendarUrl" validate:"omitempty,weburl"`
	DiscordURL   string `json:"discordUrl" validate:"omitempty,weburl"`
	WebsiteURL   string `json:"websiteUrl" validate:"omitempty,weburl"`
	InstagramURL string `json:"instagramUrl" validate:"omitempty,weburl"`
	LinkedinURL  string `json:"linkedinUrl" validate:"omitempty,weburl"`
}

// Normalize trims every field in place.
func (in *ClubInput) Normalize() {
	for _, p := range []*string{
		&in.Name, &in.Description, &in.Category, &in.ContactName, &in.ContactEmail,
		&in.CalendarURL, &in.DiscordURL, &in.WebsiteURL, &in.InstagramURL, &in.LinkedinURL,
	} {
		*p = strings.TrimSpace(*p)
	}
}

// Fields renders the profile columns plus updatedAt.
func (in ClubInput) Fields(now time.Time) store.Fields {
	return store.Fields{
		FieldName:         in.Name,
		FieldDescription:  in.Description,
		FieldCategory:     in.Category,
		FieldContactName:  in.ContactName,
		FieldContactEmail: in.ContactEmail,
		FieldCalendarURL:  in.CalendarURL,
		FieldDiscordURL:   in.DiscordURL,
		FieldWebsiteURL:   in.WebsiteURL,
		FieldInstagramURL: in.InstagramURL,
		FieldLinkedinURL:  in.LinkedinURL,
		FieldUpdatedAt:    FormatTime(now),
	}
}

// ResubmitFields puts a club back in the review queue: pending, fresh
// submittedAt, review fields cleared. reviewedAt is cleared with null,
// never with an empty string.
func ResubmitFields(now time.Time) store.Fields {
	return store.Fields{
		FieldStatus:      string(StatusPending),
		FieldSubmittedAt: FormatTime(now),
		FieldReviewedAt:  nil,
		FieldReviewNotes: "",
	}
}

// EditStatusFields returns the review columns an edit writes. Leaders always
// resubmit; admins keep the current status (approved when unset) unless
// preserve is false.
func EditStatusFields(current Status, editor Role, preserve bool, now time.Time) store.Fields {
	if editor == RoleAdmin && preserve {
		if current == "" {
			current = StatusApproved
		}
		return store.Fields{FieldStatus: string(current)}
	}
	return ResubmitFields(now)
}

// DecisionFields records an admin review.
func DecisionFields(d Decision, notes string, now time.Time) store.Fields {
	return store.Fields{
		FieldStatus:      string(d.Status()),
		FieldReviewedAt:  FormatTime(now),
		FieldReviewNotes: notes,
	}
}
