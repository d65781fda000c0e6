package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/service"
	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// AdminParticipantHandler lets the operator correct coin balances by hand,
// e.g. after a disputed review.
type AdminParticipantHandler struct {
	ledger    service.LedgerService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminParticipantHandler builds an admin participant handler instance.
func NewAdminParticipantHandler(ledger service.LedgerService, validate *validator.Validate, logger zerolog.Logger) *AdminParticipantHandler {
	return &AdminParticipantHandler{
		ledger:    ledger,
		validator: validate,
		logger:    logger.With().Str("component", "admin_participant_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AdminParticipantHandler) Register(router fiber.Router) {
	router.Post("/:id/credit", h.credit)
	router.Post("/:id/debit", h.debit)
}

func (h *AdminParticipantHandler) credit(c *fiber.Ctx) error {
	return h.adjust(c, h.ledger.Credit, "coins credited")
}

func (h *AdminParticipantHandler) debit(c *fiber.Ctx) error {
	return h.adjust(c, h.ledger.Debit, "coins debited")
}

func (h *AdminParticipantHandler) adjust(c *fiber.Ctx, apply func(ctx context.Context, participantID uint, amount int) (int, error), message string) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CoinAdjustmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	balance, err := apply(c.Context(), id, payload.Amount)
	if err != nil {
		return h.handleError(c, err)
	}

	h.logger.Info().
		Uint("participant_id", id).
		Int("amount", payload.Amount).
		Str("reason", payload.Reason).
		Msg("balance adjusted by operator")

	return utils.OK(c, dto.CoinAdjustmentResponse{
		ParticipantID: id,
		Amount:        payload.Amount,
		Balance:       balance,
	}, message, nil)
}

func (h *AdminParticipantHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrParticipantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "participant not found")
	case errors.Is(err, service.ErrNegativeAmount):
		return utils.SendError(c, fiber.StatusBadRequest, "amount must not be negative")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
