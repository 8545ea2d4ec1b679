package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"clubdir/internal/db"
	"clubdir/internal/models"
	"clubdir/internal/store"
)

// AccessService implements the leader-access request lifecycle.
type AccessService struct {
	db     *db.DB
	notify Notifier
	logger *zap.Logger
}

// NewAccessService creates an AccessService. A nil notifier sends nothing.
func NewAccessService(d *db.DB, notify Notifier, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{db: d, notify: orNop(notify), logger: logger.Named("access")}
}

// Submit files or refreshes the caller's request for clubID. An approved
// request is returned unchanged; a pending or rejected one is reset to
// pending in place.
func (s *AccessService) Submit(ctx context.Context, p *models.Principal, clubID, message string) (*models.AccessRequest, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	clubID = strings.TrimSpace(clubID)
	message = strings.TrimSpace(message)
	if clubID == "" {
		return nil, invalid("clubId is required")
	}

	latest, err := s.db.LatestAccessRequest(ctx, clubID, p.UserID)
	switch {
	case errors.Is(err, db.ErrAccessRequestNotFound):
		req, err := s.db.CreateAccessRequest(ctx, models.AccessRequestFields(p, clubID, message, s.db.Now()))
		if err != nil {
			return nil, err
		}
		s.logger.Info("access requested", zap.String("club_id", clubID), zap.String("user_id", p.UserID))
		s.notify.AccessRequested(req, p)
		return req, nil
	case err != nil:
		return nil, err
	case latest.Status == models.StatusApproved:
		return latest, nil
	}

	req, err := s.db.UpdateAccessRequest(ctx, latest.RecordID, store.Fields{
		models.FieldStatus:      string(models.StatusPending),
		models.FieldMessage:     message,
		models.FieldReviewNotes: "",
		models.FieldReviewedAt:  nil,
		models.FieldCreatedAt:   models.FormatTime(s.db.Now()),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("access re-requested", zap.String("club_id", clubID), zap.String("user_id", p.UserID))
	s.notify.AccessRequested(req, p)
	return req, nil
}

// Decide records an admin decision. Approval grants a leader membership
// unless the requester already has one for the club.
func (s *AccessService) Decide(ctx context.Context, p *models.Principal, recordID, action, reviewNotes string) (*models.AccessRequest, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	decision, ok := models.ParseDecision(action)
	if !ok {
		return nil, invalid("Action must be approve or reject.")
	}

	rec, err := s.db.FindAccessRequest(ctx, recordID)
	if errors.Is(err, db.ErrAccessRequestNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	current, err := models.AccessRequestFromRecord(rec)
	if errors.Is(err, models.ErrMalformedRecord) {
		return nil, invalid("Malformed request record.")
	}
	if err != nil {
		return nil, err
	}

	req, err := s.db.UpdateAccessRequest(ctx, recordID, models.DecisionFields(decision, reviewNotes, s.db.Now()))
	if errors.Is(err, db.ErrAccessRequestNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if decision == models.DecisionApprove {
		if err := s.grantMembership(ctx, current.ClubID, current.RequesterUserID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("access request reviewed",
		zap.String("record_id", recordID),
		zap.String("status", string(req.Status)),
		zap.String("admin", p.UserID),
	)
	s.notify.AccessDecided(req)
	return req, nil
}

func (s *AccessService) grantMembership(ctx context.Context, clubID, userID string) error {
	_, err := s.db.GetMembership(ctx, clubID, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrMembershipNotFound) {
		return err
	}
	_, err = s.db.CreateMembership(ctx, clubID, userID, models.RoleLeader)
	return err
}

// LatestForClub returns the caller's newest request for clubID, or nil.
func (s *AccessService) LatestForClub(ctx context.Context, p *models.Principal, clubID string) (*models.AccessRequest, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return nil, invalid("clubId is required")
	}

	req, err := s.db.LatestAccessRequest(ctx, clubID, p.UserID)
	if errors.Is(err, db.ErrAccessRequestNotFound) {
		return nil, nil
	}
	return req, err
}

// LatestForUser returns the caller's newest request per club, newest first,
// and the same requests keyed by clubId.
func (s *AccessService) LatestForUser(ctx context.Context, p *models.Principal) (map[string]*models.AccessRequest, []*models.AccessRequest, error) {
	if err := RequireLeader(p); err != nil {
		return nil, nil, err
	}

	all, err := s.db.ListAccessRequestsByUser(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}

	byClub := make(map[string]*models.AccessRequest)
	latest := make([]*models.AccessRequest, 0, len(all))
	for _, r := range all {
		if _, seen := byClub[r.ClubID]; seen {
			continue
		}
		byClub[r.ClubID] = r
		latest = append(latest, r)
	}
	return byClub, latest, nil
}

// ListPendingForAdmin returns the access review queue.
func (s *AccessService) ListPendingForAdmin(ctx context.Context, p *models.Principal) ([]*models.AccessRequest, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.db.ListPendingAccessRequests(ctx)
}
