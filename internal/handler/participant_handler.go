package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/service"
	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// ParticipantHandler manages registration and profile endpoints.
type ParticipantHandler struct {
	service     service.ParticipantService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewParticipantHandler builds a participant handler instance.
func NewParticipantHandler(service service.ParticipantService, submissions service.SubmissionService, logger zerolog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		service:     service,
		submissions: submissions,
		logger:      logger.With().Str("component", "participant_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ParticipantHandler) Register(router fiber.Router) {
	router.Post("", h.register)
	router.Get("/:chat_id", h.getByChat)
	router.Get("/:chat_id/submissions", h.listSubmissions)
}

func (h *ParticipantHandler) register(c *fiber.Ctx) error {
	var payload dto.ParticipantRegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	participant, err := h.service.Register(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.Created(c, participant, "participant registered")
}

func (h *ParticipantHandler) getByChat(c *fiber.Ctx) error {
	chatID, err := parseInt64Param(c, "chat_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	participant, err := h.service.GetByChatID(c.Context(), chatID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, participant, "participant retrieved", nil)
}

func (h *ParticipantHandler) listSubmissions(c *fiber.Ctx) error {
	chatID, err := parseInt64Param(c, "chat_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	participant, err := h.service.GetByChatID(c.Context(), chatID)
	if err != nil {
		return h.handleError(c, err)
	}

	submissions, err := h.submissions.ListByParticipant(c.Context(), participant.ID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, submissions, "submissions retrieved", fiber.Map{"count": len(submissions)})
}

func (h *ParticipantHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrParticipantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "participant not found")
	case errors.Is(err, service.ErrDuplicateParticipant):
		return utils.SendError(c, fiber.StatusConflict, "participant already registered")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
