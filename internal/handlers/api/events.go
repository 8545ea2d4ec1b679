package api

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"clubdir/internal/middleware"
	"clubdir/internal/models"
	"clubdir/internal/services"
)

// EventHandler serves leader event management.
type EventHandler struct {
	events *services.EventService
	logger *zap.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(events *services.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// List returns events for every club the caller manages.
func (h *EventHandler) List(c fiber.Ctx) error {
	events, err := h.events.List(c.Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"events": nonNil(events)})
}

// Create adds an event to one of the caller's clubs.
func (h *EventHandler) Create(c fiber.Ctx) error {
	var in models.EventInput
	if err := decodeBody(c, &in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	event, err := h.events.Create(c.Context(), middleware.Principal(c), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"event": event})
}

// Get returns one of the caller's events.
func (h *EventHandler) Get(c fiber.Ctx) error {
	event, err := h.events.Get(c.Context(), middleware.Principal(c), c.Params("eventId"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"event": event})
}

// Update edits one of the caller's events.
func (h *EventHandler) Update(c fiber.Ctx) error {
	var in models.EventInput
	if err := decodeBody(c, &in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	event, err := h.events.Update(c.Context(), middleware.Principal(c), c.Params("eventId"), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"event": event})
}
