package api

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"clubdir/internal/middleware"
	"clubdir/internal/models"
	"clubdir/internal/services"
)

// ClubHandler serves the public directory, leader club editing and the
// admin review queue.
type ClubHandler struct {
	clubs  *services.ClubService
	logger *zap.Logger
}

// NewClubHandler creates a new club handler.
func NewClubHandler(clubs *services.ClubService, logger *zap.Logger) *ClubHandler {
	return &ClubHandler{clubs: clubs, logger: logger}
}

// clubRequest is a club profile plus the admin-only status switch.
type clubRequest struct {
	models.ClubInput
	PreserveStatus *bool `json:"preserveStatus"`
}

// preserve defaults to true; it only has an effect for admins.
func (r clubRequest) preserve() bool {
	return r.PreserveStatus == nil || *r.PreserveStatus
}

type reviewRequest struct {
	ReviewNotes string `json:"reviewNotes"`
}

// ListPublic returns the approved directory.
func (h *ClubHandler) ListPublic(c fiber.Ctx) error {
	clubs, err := h.clubs.ListPublic(c.Context())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"clubs": nonNil(clubs)})
}

// GetPublic returns one approved club by record id or clubId.
func (h *ClubHandler) GetPublic(c fiber.Ctx) error {
	club, err := h.clubs.GetPublic(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"club": club})
}

// GetOwn returns the caller's club, or null.
func (h *ClubHandler) GetOwn(c fiber.Ctx) error {
	club, err := h.clubs.OwnClub(c.Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"club": club})
}

// SubmitOwn creates or edits the caller's club.
func (h *ClubHandler) SubmitOwn(c fiber.Ctx) error {
	var req clubRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	club, err := h.clubs.SubmitOwnClub(c.Context(), middleware.Principal(c), req.ClubInput, req.preserve())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"club": club})
}

// ListMine returns every club the caller manages.
func (h *ClubHandler) ListMine(c fiber.Ctx) error {
	clubs, err := h.clubs.ListForLeader(c.Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"clubs": nonNil(clubs)})
}

// Create adds a new club owned by the caller.
func (h *ClubHandler) Create(c fiber.Ctx) error {
	var req clubRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	club, err := h.clubs.CreateClub(c.Context(), middleware.Principal(c), req.ClubInput)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"club": club})
}

// GetManaged returns a club the caller manages.
func (h *ClubHandler) GetManaged(c fiber.Ctx) error {
	club, err := h.clubs.GetLeaderClub(c.Context(), middleware.Principal(c), c.Params("clubId"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"club": club})
}

// UpdateManaged edits a club the caller manages.
func (h *ClubHandler) UpdateManaged(c fiber.Ctx) error {
	var req clubRequest
	if err := decodeBody(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	club, err := h.clubs.UpdateLeaderClub(c.Context(), middleware.Principal(c), c.Params("clubId"), req.ClubInput, req.preserve())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"club": club})
}

// ListPending returns the review queue.
func (h *ClubHandler) ListPending(c fiber.Ctx) error {
	clubs, err := h.clubs.ListPendingForAdmin(c.Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"clubs": nonNil(clubs)})
}

// CountPending returns the size of the review queue.
func (h *ClubHandler) CountPending(c fiber.Ctx) error {
	n, err := h.clubs.CountPendingForAdmin(c.Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// Approve marks a club approved.
func (h *ClubHandler) Approve(c fiber.Ctx) error {
	return h.decide(c, models.DecisionApprove)
}

// Reject marks a club rejected.
func (h *ClubHandler) Reject(c fiber.Ctx) error {
	return h.decide(c, models.DecisionReject)
}

func (h *ClubHandler) decide(c fiber.Ctx, d models.Decision) error {
	var req reviewRequest
	decodeBody(c, &req) // notes are optional
	club, err := h.clubs.Decide(c.Context(), middleware.Principal(c), c.Params("id"), string(d), req.ReviewNotes)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"club": club})
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
