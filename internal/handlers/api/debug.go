package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"clubdir/internal/cache"
	"clubdir/internal/clock"
	"clubdir/internal/email"
)

// RecipientLister supplies default recipients for test emails.
type RecipientLister interface {
	AdminEmails(ctx context.Context) ([]string, error)
}

// DebugHandler exposes development diagnostics. Every route answers 403
// unless enabled.
type DebugHandler struct {
	enabled bool
	cache   *cache.Cache
	stats   *cache.Stats
	mail    *email.Service
	admins  RecipientLister
	clock   clock.Clock
	logger  *zap.Logger
}

// NewDebugHandler creates a new debug handler. mail and admins may be nil.
func NewDebugHandler(enabled bool, c *cache.Cache, stats *cache.Stats, mail *email.Service, admins RecipientLister, clk clock.Clock, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{enabled: enabled, cache: c, stats: stats, mail: mail, admins: admins, clock: clk, logger: logger}
}

// Guard rejects every request when diagnostics are disabled.
func (h *DebugHandler) Guard(c fiber.Ctx) error {
	if !h.enabled {
		return jsonError(c, fiber.StatusForbidden, "Not allowed")
	}
	return c.Next()
}

// Stats returns the call counters and cache state.
func (h *DebugHandler) Stats(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"stats":        h.stats.Snapshot(),
		"forceNoCache": h.cache.Bypass(),
		"cacheEntries": h.cache.Len(),
	})
}

type statsAction struct {
	Action string `json:"action"`
	Value  bool   `json:"value"`
	Table  string `json:"table"`
}

// StatsAction handles reset, setForceNoCache and invalidate.
func (h *DebugHandler) StatsAction(c fiber.Ctx) error {
	var body statsAction
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}

	switch body.Action {
	case "reset":
		h.stats.Reset()
		return c.JSON(fiber.Map{"ok": true})
	case "setForceNoCache":
		h.cache.SetBypass(body.Value)
		h.logger.Info("cache bypass changed", zap.Bool("force_no_cache", body.Value))
		return c.JSON(fiber.Map{"ok": true, "forceNoCache": body.Value})
	case "invalidate":
		if body.Table == "" {
			h.cache.InvalidateAll()
		} else {
			h.cache.Invalidate(body.Table)
		}
		return c.JSON(fiber.Map{"ok": true})
	default:
		return jsonError(c, fiber.StatusBadRequest, "invalid action")
	}
}

type testEmail struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// TestEmailUsage describes the send-test-email endpoint.
func (h *DebugHandler) TestEmailUsage(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "POST to this endpoint with { to?: string[] } in development to send a test email."})
}

// SendTestEmail sends a message synchronously, to the admins by default.
func (h *DebugHandler) SendTestEmail(c fiber.Ctx) error {
	var body testEmail
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	if h.mail == nil || !h.mail.IsEnabled() {
		return jsonError(c, fiber.StatusServiceUnavailable, "Email is not configured.")
	}

	to := body.To
	if len(to) == 0 && h.admins != nil {
		admins, err := h.admins.AdminEmails(c.Context())
		if err != nil {
			return writeError(c, h.logger, err)
		}
		to = admins
	}
	if len(to) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "No recipients found")
	}

	msg := email.Message{To: to, Subject: body.Subject, Text: body.Text}
	if msg.Subject == "" {
		msg.Subject = fmt.Sprintf("Test email from Club Directory (%s)", h.clock.Now().UTC().Format(time.RFC3339))
	}
	if msg.Text == "" {
		msg.Text = "This is a test email sent from the local dev server."
	}

	if err := h.mail.Send(c.Context(), msg); err != nil {
		h.logger.Warn("test email failed", zap.Strings("to", to), zap.Error(err))
		return c.JSON(fiber.Map{"ok": false, "to": to})
	}
	return c.JSON(fiber.Map{"ok": true, "to": to, "provider": h.mail.Provider()})
}
