package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clubdir/internal/db"
	"clubdir/internal/models"
	"clubdir/internal/store"
	"clubdir/internal/validation"
)

// ClubService implements the club review lifecycle.
type ClubService struct {
	db     *db.DB
	auth   *Authorizer
	notify Notifier
	logger *zap.Logger
}

// NewClubService creates a ClubService. A nil notifier sends nothing.
func NewClubService(d *db.DB, auth *Authorizer, notify Notifier, logger *zap.Logger) *ClubService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClubService{db: d, auth: auth, notify: orNop(notify), logger: logger.Named("clubs")}
}

func validateClubInput(in *models.ClubInput) error {
	in.Normalize()
	if in.Name == "" {
		return invalid("Club name is required.")
	}
	if err := validation.Struct(in); err != nil {
		return invalid(err.Error())
	}
	return nil
}

// OwnClub returns the caller's club: the first club they manage, or the
// club they own. It returns nil when there is none.
func (s *ClubService) OwnClub(ctx context.Context, p *models.Principal) (*models.Club, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	return s.ownClub(ctx, p)
}

func (s *ClubService) ownClub(ctx context.Context, p *models.Principal) (*models.Club, error) {
	ids, err := s.auth.UserClubIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		club, err := s.db.GetClubByClubID(ctx, ids[0])
		if err == nil || !errors.Is(err, db.ErrClubNotFound) {
			return club, err
		}
	}

	club, err := s.db.GetClubByOwner(ctx, p.UserID)
	if errors.Is(err, db.ErrClubNotFound) {
		return nil, nil
	}
	return club, err
}

// SubmitOwnClub creates the caller's club on first submission and edits it
// afterwards. Leader edits send the club back to review; admin edits keep
// its status when preserveStatus is set.
func (s *ClubService) SubmitOwnClub(ctx context.Context, p *models.Principal, in models.ClubInput, preserveStatus bool) (*models.Club, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	if err := validateClubInput(&in); err != nil {
		return nil, err
	}

	existing, err := s.ownClub(ctx, p)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.create(ctx, p, in)
	}
	return s.edit(ctx, p, existing, in, preserveStatus)
}

// CreateClub always creates a new club owned by the caller.
func (s *ClubService) CreateClub(ctx context.Context, p *models.Principal, in models.ClubInput) (*models.Club, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	if err := validateClubInput(&in); err != nil {
		return nil, err
	}
	return s.create(ctx, p, in)
}

func (s *ClubService) create(ctx context.Context, p *models.Principal, in models.ClubInput) (*models.Club, error) {
	now := s.db.Now()
	fields := in.Fields(now)
	fields[models.FieldClubID] = uuid.NewString()
	fields[models.FieldOwnerUserID] = p.UserID
	merge(fields, models.ResubmitFields(now))

	club, err := s.db.CreateClub(ctx, fields)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.CreateMembership(ctx, club.ClubID, p.UserID, models.RoleLeader); err != nil {
		return nil, err
	}

	s.logger.Info("club submitted", zap.String("club_id", club.ClubID), zap.String("user_id", p.UserID))
	s.notify.ClubSubmitted(club, p)
	return club, nil
}

func (s *ClubService) edit(ctx context.Context, p *models.Principal, existing *models.Club, in models.ClubInput, preserveStatus bool) (*models.Club, error) {
	now := s.db.Now()
	fields := in.Fields(now)
	merge(fields, models.EditStatusFields(existing.Status, p.Role, preserveStatus, now))

	club, err := s.db.UpdateClub(ctx, existing.RecordID, fields)
	if errors.Is(err, db.ErrClubNotFound) {
		return nil, ErrNotFound
	}
	return club, err
}

// GetLeaderClub returns a club the caller manages.
func (s *ClubService) GetLeaderClub(ctx context.Context, p *models.Principal, clubID string) (*models.Club, error) {
	if err := s.auth.requireClubMember(ctx, p, clubID); err != nil {
		return nil, err
	}
	club, err := s.db.GetClubByClubID(ctx, clubID)
	if errors.Is(err, db.ErrClubNotFound) {
		return nil, ErrNotFound
	}
	return club, err
}

// UpdateLeaderClub edits a club the caller manages.
func (s *ClubService) UpdateLeaderClub(ctx context.Context, p *models.Principal, clubID string, in models.ClubInput, preserveStatus bool) (*models.Club, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	if err := validateClubInput(&in); err != nil {
		return nil, err
	}

	existing, err := s.GetLeaderClub(ctx, p, clubID)
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, p, existing, in, preserveStatus)
}

// Decide records an admin approval or rejection.
func (s *ClubService) Decide(ctx context.Context, p *models.Principal, recordID, action, reviewNotes string) (*models.Club, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	decision, ok := models.ParseDecision(action)
	if !ok {
		return nil, invalid("Action must be approve or reject.")
	}

	_, err := s.db.FindClub(ctx, recordID)
	if errors.Is(err, db.ErrClubNotFound) {
		return nil, ErrNotFound
	}
	if errors.Is(err, models.ErrMalformedRecord) {
		return nil, invalid("Malformed club record.")
	}
	if err != nil {
		return nil, err
	}

	club, err := s.db.UpdateClub(ctx, recordID, models.DecisionFields(decision, reviewNotes, s.db.Now()))
	if errors.Is(err, db.ErrClubNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("club reviewed",
		zap.String("record_id", recordID),
		zap.String("status", string(club.Status)),
		zap.String("admin", p.UserID),
	)
	s.notify.ClubDecided(club)
	return club, nil
}

// ListPublic returns the approved directory.
func (s *ClubService) ListPublic(ctx context.Context) ([]*models.Club, error) {
	return s.db.ListApprovedClubs(ctx)
}

// GetPublic returns one approved club by record id or clubId.
func (s *ClubService) GetPublic(ctx context.Context, id string) (*models.Club, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	club, err := s.db.GetPublicClub(ctx, id)
	if errors.Is(err, db.ErrClubNotFound) {
		return nil, ErrNotFound
	}
	return club, err
}

// ListPendingForAdmin returns the club review queue.
func (s *ClubService) ListPendingForAdmin(ctx context.Context, p *models.Principal) ([]*models.Club, error) {
	if err := RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.db.ListPendingClubs(ctx)
}

// CountPendingForAdmin returns the length of the club review queue.
func (s *ClubService) CountPendingForAdmin(ctx context.Context, p *models.Principal) (int, error) {
	if err := RequireAdmin(p); err != nil {
		return 0, err
	}
	return s.db.CountPendingClubs(ctx)
}

// ListForLeader returns the clubs the caller manages.
func (s *ClubService) ListForLeader(ctx context.Context, p *models.Principal) ([]*models.Club, error) {
	if err := RequireLeader(p); err != nil {
		return nil, err
	}
	ids, err := s.auth.UserClubIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return s.db.ListClubsByClubIDs(ctx, ids)
}

func merge(dst, src store.Fields) {
	for k, v := range src {
		dst[k] = v
	}
}
