package services

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"clubdir/internal/db"
	"clubdir/internal/models"
)

// EventService manages club calendar entries.
type EventService struct {
	db     *db.DB
	auth   *Authorizer
	logger *zap.Logger
}

// NewEventService creates an EventService.
func NewEventService(d *db.DB, auth *Authorizer, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{db: d, auth: auth, logger: logger.Named("events")}
}

func validateEventInput(in *models.EventInput, requireClub bool) error {
	in.Normalize()
	switch {
	case requireClub && in.ClubID == "":
		return invalid("Club is required.")
	case in.EventTitle == "":
		return invalid("Event title is required.")
	case in.EventDate == "":
		return invalid("Event date is required.")
	}
	return nil
}

// Create adds an event to one of the caller's clubs.
func (s *EventService) Create(ctx context.Context, p *models.Principal, in models.EventInput) (*models.Event, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	if err := validateEventInput(&in, true); err != nil {
		return nil, err
	}

	ids, err := s.auth.UserClubIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(ids, in.ClubID) {
		return nil, ErrForbidden
	}

	fields := in.Fields()
	fields[models.FieldClubID] = in.ClubID
	fields[models.FieldOwnerUserID] = p.UserID
	fields[models.FieldCreatedAt] = models.FormatTime(s.db.Now())

	event, err := s.db.CreateEvent(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info("event created", zap.String("club_id", in.ClubID), zap.String("event_id", event.RecordID))
	return event, nil
}

// Get returns an event belonging to one of the caller's clubs.
func (s *EventService) Get(ctx context.Context, p *models.Principal, eventID string) (*models.Event, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	return s.find(ctx, p, eventID)
}

func (s *EventService) find(ctx context.Context, p *models.Principal, eventID string) (*models.Event, error) {
	ids, err := s.auth.UserClubIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	events, err := s.db.ListEventsByClubIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.RecordID == eventID {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

// List returns the events of every club the caller manages.
func (s *EventService) List(ctx context.Context, p *models.Principal) ([]*models.Event, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	ids, err := s.auth.UserClubIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return s.db.ListEventsByClubIDs(ctx, ids)
}

// Update rewrites an event belonging to one of the caller's clubs. The
// event's club cannot change.
func (s *EventService) Update(ctx context.Context, p *models.Principal, eventID string, in models.EventInput) (*models.Event, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	if err := validateEventInput(&in, false); err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, p, eventID)
	if err != nil {
		return nil, err
	}

	event, err := s.db.UpdateEvent(ctx, existing.RecordID, in.Fields())
	if errors.Is(err, db.ErrEventNotFound) {
		return nil, ErrNotFound
	}
	return event, err
}
