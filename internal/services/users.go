package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"clubdir/internal/db"
	"clubdir/internal/models"
	"clubdir/internal/store"
	"clubdir/internal/validation"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 10

// UserService handles signup and sign-in.
type UserService struct {
	db     *db.DB
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(d *db.DB, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{db: d, logger: logger.Named("users")}
}

// Signup creates a password account with the default leader role.
func (s *UserService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if ok, _ := validation.ValidateEmail(email); !ok {
		return nil, invalid("Use a valid email and password (8+ chars).")
	}
	if ok, _ := validation.ValidatePassword(password); !ok {
		return nil, invalid("Use a valid email and password (8+ chars).")
	}

	_, err := s.db.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.db.CreateUser(ctx, store.Fields{
		models.FieldUserID:       uuid.NewString(),
		models.FieldEmail:        email,
		models.FieldPasswordHash: string(hash),
		models.FieldCreatedAt:    models.FormatTime(s.db.Now()),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", zap.String("user_id", user.UserID))
	return user, nil
}

// Authenticate checks a password login.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.Principal, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return user.Principal(), nil
}

// OIDCClaims is the subset of ID token claims used for sign-in.
type OIDCClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// LoginOIDC finds or creates the account matching the token's email.
func (s *UserService) LoginOIDC(ctx context.Context, claims OIDCClaims) (*models.Principal, error) {
	email := models.NormalizeEmail(claims.Email)
	if email == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		user, err = s.db.CreateUser(ctx, store.Fields{
			models.FieldUserID:      uuid.NewString(),
			models.FieldEmail:       email,
			models.FieldDisplayName: strings.TrimSpace(claims.Name),
			models.FieldSubject:     claims.Subject,
			models.FieldCreatedAt:   models.FormatTime(s.db.Now()),
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("user created from OIDC login", zap.String("user_id", user.UserID))
	case err != nil:
		return nil, err
	case user.Subject == "" && claims.Subject != "":
		if updated, err := s.db.UpdateUser(ctx, user.RecordID, store.Fields{models.FieldSubject: claims.Subject}); err == nil {
			user = updated
		} else {
			s.logger.Warn("failed to link OIDC subject", zap.String("user_id", user.UserID), zap.Error(err))
		}
	}
	return user.Principal(), nil
}
