package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/service"
	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// GatewayHandler receives chat updates relayed by the messaging gateway and
// answers with the reply the gateway should send back to the chat.
type GatewayHandler struct {
	conversations service.ConversationService
	logger        zerolog.Logger
}

// NewGatewayHandler builds a gateway handler instance.
func NewGatewayHandler(conversations service.ConversationService, logger zerolog.Logger) *GatewayHandler {
	return &GatewayHandler{
		conversations: conversations,
		logger:        logger.With().Str("component", "gateway_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GatewayHandler) Register(router fiber.Router) {
	router.Post("/messages", h.receive)
}

func (h *GatewayHandler) receive(c *fiber.Ctx) error {
	var payload dto.GatewayMessageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.conversations.HandleMessage(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Int64("chat_id", payload.ChatID).Msg("failed to handle gateway message")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.OK(c, reply, "message handled", nil)
}
