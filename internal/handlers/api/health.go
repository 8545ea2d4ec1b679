package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"clubdir/internal/store"
)

const readinessTimeout = 2 * time.Second

// ProbeHandler handles the liveness and readiness probe endpoints.
type ProbeHandler struct {
	pinger store.Pinger
	logger *zap.Logger
}

// NewProbeHandler creates a new probe handler. Clients that cannot be
// pinged are always reported ready.
func NewProbeHandler(client store.Client, logger *zap.Logger) *ProbeHandler {
	pinger, _ := client.(store.Pinger)
	return &ProbeHandler{pinger: pinger, logger: logger}
}

// Liveness reports that the process is serving. It does not touch the store.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// Readiness returns 503 while the store is unreachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.pinger == nil {
		return c.JSON(fiber.Map{"ok": true})
	}

	ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"ok":    false,
			"error": "store unavailable",
		})
	}
	return c.JSON(fiber.Map{"ok": true})
}
