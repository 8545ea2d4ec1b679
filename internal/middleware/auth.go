// Package middleware resolves the caller's principal from a session cookie
// or a bearer token.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"go.uber.org/zap"

	"clubdir/internal/models"
)

// Session keys.
const (
	sessionUserID = "user_id"
	sessionRole   = "role"
	sessionEmail  = "email"
)

const principalKey = "principal"

// AuthMiddleware loads the caller identity. Bearer tokens win over the
// session when both are present.
type AuthMiddleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware instance. tokens may be nil.
func NewAuthMiddleware(tokens *TokenManager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, logger: logger.Named("auth")}
}

// LoadPrincipal attaches the principal, if any, and always continues.
func (m *AuthMiddleware) LoadPrincipal(c fiber.Ctx) error {
	if p := m.fromBearer(c); p != nil {
		c.Locals(principalKey, p)
		return c.Next()
	}
	if p := fromSession(c); p != nil {
		c.Locals(principalKey, p)
	}
	return c.Next()
}

// RequireAuth rejects anonymous callers with 401.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	if Principal(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return c.Next()
}

// RequireRole rejects callers without one of roles: 401 when anonymous,
// 403 otherwise.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		p := Principal(c)
		if p == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !p.HasRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) fromBearer(c fiber.Ctx) *models.Principal {
	if m.tokens == nil {
		return nil
	}
	header := c.Get(fiber.HeaderAuthorization)
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil
	}
	p, err := m.tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		m.logger.Debug("rejected bearer token", zap.Error(err))
		return nil
	}
	return p
}

func fromSession(c fiber.Ctx) *models.Principal {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	userID, _ := sess.Get(sessionUserID).(string)
	if userID == "" {
		return nil
	}
	role, _ := sess.Get(sessionRole).(string)
	email, _ := sess.Get(sessionEmail).(string)
	return &models.Principal{UserID: userID, Role: models.ParseRole(role), Email: email}
}

// Principal returns the caller attached by LoadPrincipal, or nil.
func Principal(c fiber.Ctx) *models.Principal {
	p, _ := c.Locals(principalKey).(*models.Principal)
	return p
}

// Login stores p in the session, rotating the session id.
func Login(c fiber.Ctx, p *models.Principal) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session unavailable")
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUserID, p.UserID)
	sess.Set(sessionRole, string(p.Role))
	sess.Set(sessionEmail, p.Email)
	c.Locals(principalKey, p)
	return nil
}

// Logout clears the session.
func Logout(c fiber.Ctx) error {
	c.Locals(principalKey, nil)
	if sess := session.FromContext(c); sess != nil {
		return sess.Destroy()
	}
	return nil
}
