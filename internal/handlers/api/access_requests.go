package api

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"clubdir/internal/middleware"
	"clubdir/internal/models"
	"clubdir/internal/services"
)

// AccessRequestHandler serves leader access requests and their review.
type AccessRequestHandler struct {
	access *services.AccessService
	logger *zap.Logger
}

// NewAccessRequestHandler creates a new access request handler.
func NewAccessRequestHandler(access *services.AccessService, logger *zap.Logger) *AccessRequestHandler {
	return &AccessRequestHandler{access: access, logger: logger}
}

type accessRequestBody struct {
	ClubID  string `json:"clubId"`
	Message string `json:"message"`
}

// Latest returns the caller's newest request for ?clubId=, or null.
func (h *AccessRequestHandler) Latest(c fiber.Ctx) error {
	req, err := h.access.LatestForClub(c.Context(), middleware.Principal(c), c.Query("clubId"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"request": req})
}

// Mine returns the caller's newest request per club.
func (h *AccessRequestHandler) Mine(c fiber.Ctx) error {
	byClub, requests, err := h.access.LatestForUser(c.Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"byClubId": byClub, "requests": requests})
}

// Submit files or refreshes an access request.
func (h *AccessRequestHandler) Submit(c fiber.Ctx) error {
	var body accessRequestBody
	if err := decodeBody(c, &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, msgInvalidJSON)
	}
	req, err := h.access.Submit(c.Context(), middleware.Principal(c), body.ClubID, body.Message)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"request": req})
}

// ListPending returns the access review queue.
func (h *AccessRequestHandler) ListPending(c fiber.Ctx) error {
	reqs, err := h.access.ListPendingForAdmin(c.Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"requests": nonNil(reqs)})
}

// Approve grants the requester leadership of the club.
func (h *AccessRequestHandler) Approve(c fiber.Ctx) error {
	return h.decide(c, models.DecisionApprove)
}

// Reject declines the request.
func (h *AccessRequestHandler) Reject(c fiber.Ctx) error {
	return h.decide(c, models.DecisionReject)
}

func (h *AccessRequestHandler) decide(c fiber.Ctx, d models.Decision) error {
	var body reviewRequest
	decodeBody(c, &body) // notes are optional
	req, err := h.access.Decide(c.Context(), middleware.Principal(c), c.Params("id"), string(d), body.ReviewNotes)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"request": req})
}
