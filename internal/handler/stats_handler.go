package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/service"
	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// StatsHandler serves the operator statistics overview.
type StatsHandler struct {
	stats  service.StatsService
	logger zerolog.Logger
}

// NewStatsHandler builds a stats handler instance.
func NewStatsHandler(stats service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("", h.overview)
}

func (h *StatsHandler) overview(c *fiber.Ctx) error {
	overview, err := h.stats.Overview(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.OK(c, overview, "statistics retrieved", nil)
}
