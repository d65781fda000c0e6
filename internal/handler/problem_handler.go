package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/service"
	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// ProblemHandler serves the participant-facing problem catalog.
type ProblemHandler struct {
	catalog service.CatalogService
	logger  zerolog.Logger
}

// NewProblemHandler builds a problem handler instance.
func NewProblemHandler(catalog service.CatalogService, logger zerolog.Logger) *ProblemHandler {
	return &ProblemHandler{
		catalog: catalog,
		logger:  logger.With().Str("component", "problem_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProblemHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *ProblemHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.ProblemListRequest{
		Category: c.Query("category"),
		Today:    c.QueryBool("today"),
		Limit:    limit,
	}

	problems, err := h.catalog.List(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, problems, "problems retrieved", fiber.Map{"count": len(problems)})
}

func (h *ProblemHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	problem, err := h.catalog.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, problem, "problem retrieved", nil)
}

func (h *ProblemHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
