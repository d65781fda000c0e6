package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

const leaderboardCacheKey = "challenge:leaderboard"

// LeaderboardService produces the coin ranking shown to participants.
type LeaderboardService interface {
	Top(ctx context.Context) ([]dto.LeaderboardEntry, error)
}

type leaderboardService struct {
	participants repository.ParticipantRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	size         int
	logger       zerolog.Logger
}

// NewLeaderboardService builds the cached leaderboard aggregator.
func NewLeaderboardService(participants repository.ParticipantRepository, cache *redis.Client, ttl time.Duration, size int, logger zerolog.Logger) LeaderboardService {
	if size <= 0 {
		size = 5
	}

	return &leaderboardService{
		participants: participants,
		cache:        cache,
		cacheTTL:     ttl,
		size:         size,
		logger:       logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func (s *leaderboardService) Top(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var entries []dto.LeaderboardEntry
			if unmarshalErr := json.Unmarshal([]byte(cached), &entries); unmarshalErr == nil {
				s.logger.Debug().Msg("leaderboard cache hit")
				return entries, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
	}

	participants, err := s.participants.TopByCoins(ctx, s.size)
	if err != nil {
		return nil, err
	}

	entries := dto.NewLeaderboard(participants)

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, leaderboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return entries, nil
}
