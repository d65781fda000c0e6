package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/service"
	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// AdminProblemHandler manages operator problem publishing.
type AdminProblemHandler struct {
	catalog  service.CatalogService
	dispatch service.DispatchService
	logger   zerolog.Logger
}

// NewAdminProblemHandler builds an admin problem handler instance.
func NewAdminProblemHandler(catalog service.CatalogService, dispatch service.DispatchService, logger zerolog.Logger) *AdminProblemHandler {
	return &AdminProblemHandler{
		catalog:  catalog,
		dispatch: dispatch,
		logger:   logger.With().Str("component", "admin_problem_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminProblemHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/expired", h.listExpired)
	router.Post("/:id/dispatch", h.dispatchNow)
}

func (h *AdminProblemHandler) listExpired(c *fiber.Ctx) error {
	problems, err := h.catalog.Expired(c.Context(), time.Now())
	if err != nil {
		return h.handleError(c, err)
	}

	responses := dto.NewProblemResponseSlice(problems)
	return utils.OK(c, responses, "expired problems retrieved", fiber.Map{"count": len(responses)})
}

func (h *AdminProblemHandler) create(c *fiber.Ctx) error {
	var payload dto.ProblemCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	problem, err := h.catalog.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	// Send-now problems skip the scheduler and fan out before the response
	// returns, so the operator sees the delivery report immediately.
	if payload.SendNow {
		report, err := h.dispatch.DispatchProblem(c.Context(), problemModel(problem))
		if err != nil {
			return h.handleError(c, err)
		}
		return utils.Created(c, fiber.Map{"problem": problem, "dispatch": report}, "problem created and dispatched")
	}

	return utils.Created(c, problem, "problem created")
}

func (h *AdminProblemHandler) dispatchNow(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	problem, err := h.catalog.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	report, err := h.dispatch.DispatchProblem(c.Context(), problemModel(problem))
	if err != nil {
		return h.handleError(c, err)
	}
	if err := h.catalog.MarkDispatched(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, report, "problem dispatched", nil)
}

func (h *AdminProblemHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case errors.Is(err, service.ErrInvalidDeadline):
		return utils.SendError(c, fiber.StatusBadRequest, "deadline must be in the future")
	case errors.Is(err, service.ErrInvalidSchedule):
		return utils.SendError(c, fiber.StatusBadRequest, "scheduled time must precede the deadline")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func problemModel(problem dto.ProblemResponse) models.Problem {
	return models.Problem{
		ID:         problem.ID,
		Text:       problem.Text,
		ImageURL:   problem.ImageURL,
		Difficulty: problem.Difficulty,
		Category:   problem.Category,
		Deadline:   problem.Deadline,
	}
}
