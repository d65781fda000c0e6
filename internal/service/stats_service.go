package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// StatsService aggregates operator-facing statistics.
type StatsService interface {
	Overview(ctx context.Context) (dto.StatsOverview, error)
}

type statsService struct {
	participants repository.ParticipantRepository
	problems     repository.ProblemRepository
	submissions  repository.SubmissionRepository
	logger       zerolog.Logger
}

// NewStatsService constructs the stats aggregator.
func NewStatsService(participants repository.ParticipantRepository, problems repository.ProblemRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		participants: participants,
		problems:     problems,
		submissions:  submissions,
		logger:       logger.With().Str("component", "stats_service").Logger(),
	}
}

func (s *statsService) Overview(ctx context.Context) (dto.StatsOverview, error) {
	total, err := s.participants.Count(ctx)
	if err != nil {
		return dto.StatsOverview{}, err
	}

	coins, err := s.participants.TotalCoins(ctx)
	if err != nil {
		return dto.StatsOverview{}, err
	}

	overview := dto.StatsOverview{
		TotalParticipants: total,
		TotalCoins:        coins,
	}

	latest, err := s.problems.Latest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return overview, nil
		}
		return dto.StatsOverview{}, err
	}

	counts, err := s.submissions.CountByStatus(ctx, latest.ID)
	if err != nil {
		return dto.StatsOverview{}, err
	}

	overview.LatestProblem = &dto.ProblemStats{
		ProblemID:    latest.ID,
		Category:     latest.Category,
		Difficulty:   latest.Difficulty,
		Deadline:     latest.Deadline,
		Approved:     counts[models.SubmissionStatusApproved],
		Rejected:     counts[models.SubmissionStatusRejected],
		Pending:      counts[models.SubmissionStatusPending],
		AutoRejected: counts[models.SubmissionStatusAutoRejected],
	}

	return overview, nil
}
