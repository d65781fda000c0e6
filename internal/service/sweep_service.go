package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/observability"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// SweepService reconciles expired problems: it penalizes participants who
// submitted nothing and auto-rejects submissions still pending.
type SweepService interface {
	// RunSweep processes every expired problem not yet closed, in id
	// ascending order. Penalties are decided and applied inside a single
	// transaction per problem, so a participant is debited at most once per
	// problem, and re-running the sweep changes nothing.
	RunSweep(ctx context.Context, now time.Time) (dto.SweepReport, error)
}

type sweepService struct {
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	notifier    Notifier
	templates   MessageTemplates
	penalty     int
	logger      zerolog.Logger
}

// NewSweepService constructs the deadline sweep.
func NewSweepService(problems repository.ProblemRepository, submissions repository.SubmissionRepository, notifier Notifier, templates MessageTemplates, penalty int, logger zerolog.Logger) SweepService {
	if penalty < 0 {
		penalty = 0
	}

	return &sweepService{
		problems:    problems,
		submissions: submissions,
		notifier:    notifier,
		templates:   templates,
		penalty:     penalty,
		logger:      logger.With().Str("component", "sweep_service").Logger(),
	}
}

func (s *sweepService) RunSweep(ctx context.Context, now time.Time) (dto.SweepReport, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-challenge-api/internal/service/sweep")
	ctx, span := tracer.Start(ctx, "sweep.run")
	defer span.End()

	expired, err := s.problems.ListExpiredOpen(ctx, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "expired_lookup_failed")
		return dto.SweepReport{}, err
	}

	report := dto.SweepReport{}
	for _, problem := range expired {
		sweep, err := s.submissions.SweepProblem(ctx, problem.ID, s.penalty, now)
		if err != nil {
			// A storage failure aborts this problem only; the next scheduled
			// pass retries it because closed_at was never set.
			span.RecordError(err)
			s.logger.Error().Err(err).Uint("problem_id", problem.ID).Msg("failed to sweep problem")
			continue
		}

		if !sweep.Closed {
			continue
		}

		problemReport := dto.ProblemSweepReport{
			ProblemID:    problem.ID,
			Penalized:    len(sweep.Penalties),
			AutoRejected: sweep.AutoRejected,
		}

		// Penalty notices go out after the transaction committed, so no
		// data-layer lock is held during notification I/O.
		for _, penalty := range sweep.Penalties {
			observability.SweepPenalties().Inc()

			result := dto.RecipientResult{ChatID: penalty.ChatID, Delivered: true}
			message := s.templates.RenderPenalty(problem.ID, penalty.Penalty, penalty.Balance)
			if err := s.notifier.Notify(ctx, penalty.ChatID, message); err != nil {
				result.Delivered = false
				result.Error = err.Error()
				observability.NotificationFailures().WithLabelValues("sweep").Inc()
				s.logger.Warn().Err(err).
					Int64("chat_id", penalty.ChatID).
					Uint("problem_id", problem.ID).
					Msg("failed to deliver penalty notice")
			}
			problemReport.Notices = append(problemReport.Notices, result)
		}

		s.logger.Info().
			Uint("problem_id", problem.ID).
			Int("penalized", problemReport.Penalized).
			Int64("auto_rejected", sweep.AutoRejected).
			Msg("expired problem swept")

		report.Problems = append(report.Problems, problemReport)
	}

	span.SetAttributes(attribute.Int("sweep.problems", len(report.Problems)))

	return report, nil
}
