package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/observability"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// DispatchService announces due problems to the participant population.
type DispatchService interface {
	// RunDispatch fans out every problem whose scheduled send-time has
	// arrived, in id ascending order, then clears its scheduled marker.
	// Re-running before a new scheduled problem exists is a no-op.
	RunDispatch(ctx context.Context, now time.Time) (dto.DispatchReport, error)
	// DispatchProblem fans out a single problem immediately. Used by the
	// operator's send-now path. An error means fan-out never started; partial
	// delivery failures are reported per recipient instead.
	DispatchProblem(ctx context.Context, problem models.Problem) (dto.ProblemDispatchReport, error)
}

type dispatchService struct {
	catalog      CatalogService
	participants repository.ParticipantRepository
	notifier     Notifier
	templates    MessageTemplates
	logger       zerolog.Logger
}

// NewDispatchService constructs the dispatch engine.
func NewDispatchService(catalog CatalogService, participants repository.ParticipantRepository, notifier Notifier, templates MessageTemplates, logger zerolog.Logger) DispatchService {
	return &dispatchService{
		catalog:      catalog,
		participants: participants,
		notifier:     notifier,
		templates:    templates,
		logger:       logger.With().Str("component", "dispatch_service").Logger(),
	}
}

func (s *dispatchService) RunDispatch(ctx context.Context, now time.Time) (dto.DispatchReport, error) {
	due, err := s.catalog.DueForDispatch(ctx, now)
	if err != nil {
		return dto.DispatchReport{}, err
	}

	report := dto.DispatchReport{}
	for _, problem := range due {
		problemReport, err := s.DispatchProblem(ctx, problem)
		if err != nil {
			// Fan-out never started, so the scheduled marker stays set and
			// the next pass retries this problem.
			s.logger.Error().Err(err).Uint("problem_id", problem.ID).Msg("failed to dispatch problem")
			return report, err
		}
		report.Problems = append(report.Problems, problemReport)

		// The scheduled marker is cleared regardless of per-recipient
		// outcomes: dispatch records that fan-out was attempted, not that
		// every recipient received it.
		if err := s.catalog.MarkDispatched(ctx, problem.ID); err != nil {
			s.logger.Error().Err(err).Uint("problem_id", problem.ID).Msg("failed to clear scheduled marker")
			return report, err
		}
		report.Dispatched++
		observability.DispatchedProblems().Inc()
	}

	return report, nil
}

func (s *dispatchService) DispatchProblem(ctx context.Context, problem models.Problem) (dto.ProblemDispatchReport, error) {
	report := dto.ProblemDispatchReport{ProblemID: problem.ID}

	recipients, err := s.participants.ListRecipients(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list dispatch recipients: %w", err)
	}

	message := s.templates.RenderAnnouncement(problem)
	for _, recipient := range recipients {
		result := dto.RecipientResult{ChatID: recipient.ChatID, Delivered: true}

		var deliverErr error
		if problem.ImageURL != "" {
			deliverErr = s.notifier.NotifyPhoto(ctx, recipient.ChatID, problem.ImageURL, message)
		} else {
			deliverErr = s.notifier.Notify(ctx, recipient.ChatID, message)
		}

		if deliverErr != nil {
			result.Delivered = false
			result.Error = deliverErr.Error()
			report.Failed++
			observability.NotificationFailures().WithLabelValues("dispatch").Inc()
			s.logger.Warn().Err(deliverErr).
				Int64("chat_id", recipient.ChatID).
				Uint("problem_id", problem.ID).
				Msg("failed to deliver problem announcement")
		} else {
			report.Delivered++
		}

		report.Recipients = append(report.Recipients, result)
	}

	s.logger.Info().
		Uint("problem_id", problem.ID).
		Int("delivered", report.Delivered).
		Int("failed", report.Failed).
		Msg("problem dispatched")

	return report, nil
}
