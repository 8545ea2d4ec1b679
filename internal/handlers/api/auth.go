package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"clubdir/internal/config"
	"clubdir/internal/middleware"
	"clubdir/internal/models"
	"clubdir/internal/services"
)

// AuthHandler serves password signup and sign-in.
type AuthHandler struct {
	users  *services.UserService
	tokens *middleware.TokenManager
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler. tokens may be nil, in which
// case login responses carry no bearer token.
func NewAuthHandler(users *services.UserService, tokens *middleware.TokenManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates a leader account.
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var body credentials
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	_, err := h.users.Signup(c.Context(), body.Email, body.Password)
	if errors.Is(err, services.ErrConflict) {
		return jsonError(c, fiber.StatusConflict, "Email already exists.")
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Login checks credentials and starts a session.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body credentials
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	p, err := h.users.Authenticate(c.Context(), body.Email, body.Password)
	if errors.Is(err, services.ErrUnauthorized) {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid email or password.")
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return h.startSession(c, p)
}

func (h *AuthHandler) startSession(c fiber.Ctx, p *models.Principal) error {
	if err := middleware.Login(c, p); err != nil {
		return writeError(c, h.logger, err)
	}
	resp := fiber.Map{"ok": true, "user": p}
	if h.tokens != nil {
		token, err := h.tokens.Issue(p)
		if err != nil {
			return writeError(c, h.logger, err)
		}
		resp["token"] = token
	}
	return c.JSON(resp)
}

// Logout ends the session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := middleware.Logout(c); err != nil {
		h.logger.Warn("failed to destroy session", zap.Error(err))
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Me returns the caller, or 401.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	p := middleware.Principal(c)
	if p == nil {
		return jsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.JSON(fiber.Map{"user": p})
}

// OIDCHandler handles the OIDC authorization code flow.
type OIDCHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	users        *services.UserService
	logger       *zap.Logger
}

// NewOIDCHandler discovers the issuer and builds the OAuth2 client.
func NewOIDCHandler(ctx context.Context, cfg *config.Config, users *services.UserService, logger *zap.Logger) (*OIDCHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	return &OIDCHandler{
		provider: provider,
		oauth2Config: oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
		users:    users,
		logger:   logger,
	}, nil
}

// Login redirects to the identity provider.
func (h *OIDCHandler) Login(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return jsonError(c, fiber.StatusInternalServerError, "Session not available.")
	}
	state := generateState()
	sess.Set("oauth_state", state)
	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback finishes the flow and signs the user in.
func (h *OIDCHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return jsonError(c, fiber.StatusInternalServerError, "Session not available.")
	}

	saved, _ := sess.Get("oauth_state").(string)
	if saved == "" || saved != c.Query("state") {
		return jsonError(c, fiber.StatusBadRequest, "Invalid state.")
	}
	sess.Delete("oauth_state")

	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Failed to exchange code.")
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Missing id_token.")
	}
	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid id_token.")
	}

	var claims services.OIDCClaims
	if err := idToken.Claims(&claims); err != nil {
		return writeError(c, h.logger, err)
	}
	// Some providers only put email in userinfo.
	if claims.Email == "" {
		if info, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(oauth2Token)); err == nil {
			claims.Email = info.Email
		} else {
			h.logger.Warn("failed to fetch userinfo", zap.Error(err))
		}
	}

	p, err := h.users.LoginOIDC(c.Context(), claims)
	if errors.Is(err, services.ErrUnauthorized) {
		return jsonError(c, fiber.StatusUnauthorized, "Identity provider returned no email.")
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if err := middleware.Login(c, p); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Redirect().To("/")
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
