package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clubdir/internal/clock"
	"clubdir/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carries the principal inside a bearer token.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenManager returns nil when secret is empty, which disables bearer auth.
func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) *TokenManager {
	if secret == "" {
		return nil
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Issue signs a token for p.
func (tm *TokenManager) Issue(p *models.Principal) (string, error) {
	now := tm.clock.Now()
	claims := Claims{
		Role:  string(p.Role),
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Parse verifies a token and returns its principal.
func (tm *TokenManager) Parse(tokenString string) (*models.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.clock.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &models.Principal{
		UserID: claims.Subject,
		Role:   models.ParseRole(claims.Role),
		Email:  claims.Email,
	}, nil
}
