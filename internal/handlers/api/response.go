// Package api implements the JSON HTTP handlers.
package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"clubdir/internal/services"
	"clubdir/internal/store"
)

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// writeError maps a service error onto a status code. Store failures are
// logged and answered with a generic message.
func writeError(c fiber.Ctx, logger *zap.Logger, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return jsonError(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrUnauthorized):
		return jsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrForbidden):
		return jsonError(c, fiber.StatusForbidden, "Forbidden")
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrConflict):
		return jsonError(c, fiber.StatusConflict, "Conflict")
	}

	fields := []zap.Field{zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err)}
	if store.IsRemote(err) {
		logger.Error("store request failed", fields...)
	} else {
		logger.Error("request failed", fields...)
	}
	return jsonError(c, fiber.StatusInternalServerError, "Internal error")
}

const msgInvalidJSON = "Invalid JSON body."

// decodeBody parses an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeBody(c fiber.Ctx, dst any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}
