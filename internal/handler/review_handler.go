package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/service"
	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// ReviewHandler manages operator review of submissions.
type ReviewHandler struct {
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewReviewHandler builds a review handler instance.
func NewReviewHandler(submissions service.SubmissionService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		submissions: submissions,
		logger:      logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/approve", h.approve)
	router.Post("/:id/reject", h.reject)
	router.Post("/:id/resubmit", h.resubmit)
}

// RegisterProblemRoutes attaches the per-problem listing route.
func (h *ReviewHandler) RegisterProblemRoutes(router fiber.Router) {
	router.Get("/:id/submissions", h.listByProblem)
}

func (h *ReviewHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, submission, "submission retrieved", nil)
}

func (h *ReviewHandler) listByProblem(c *fiber.Ctx) error {
	problemID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.submissions.ListByProblem(c.Context(), problemID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, submissions, "submissions retrieved", fiber.Map{"count": len(submissions)})
}

func (h *ReviewHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.submissions.Approve(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, result, "submission approved", nil)
}

func (h *ReviewHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionRejectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.submissions.Reject(c.Context(), id, payload.Feedback)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, result, "submission rejected", nil)
}

func (h *ReviewHandler) resubmit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.submissions.Resubmit(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, result, "submission reopened", nil)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, "submission is not in the required state")
	case errors.Is(err, service.ErrEmptyFeedback):
		return utils.SendError(c, fiber.StatusBadRequest, "rejection feedback must not be empty")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
