package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/observability"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// ReminderService nudges participants who have not yet submitted for problems
// whose deadline is approaching. Reminders are best-effort and may repeat on
// consecutive passes; they carry no state.
type ReminderService interface {
	RunReminders(ctx context.Context, now time.Time) (dto.ReminderReport, error)
}

type reminderService struct {
	problems     repository.ProblemRepository
	submissions  repository.SubmissionRepository
	participants repository.ParticipantRepository
	notifier     Notifier
	templates    MessageTemplates
	window       time.Duration
	logger       zerolog.Logger
}

// NewReminderService constructs the reminder pass.
func NewReminderService(
	problems repository.ProblemRepository,
	submissions repository.SubmissionRepository,
	participants repository.ParticipantRepository,
	notifier Notifier,
	templates MessageTemplates,
	window time.Duration,
	logger zerolog.Logger,
) ReminderService {
	if window <= 0 {
		window = time.Hour
	}

	return &reminderService{
		problems:     problems,
		submissions:  submissions,
		participants: participants,
		notifier:     notifier,
		templates:    templates,
		window:       window,
		logger:       logger.With().Str("component", "reminder_service").Logger(),
	}
}

func (s *reminderService) RunReminders(ctx context.Context, now time.Time) (dto.ReminderReport, error) {
	closing, err := s.problems.DeadlineBetween(ctx, now, now.Add(s.window))
	if err != nil {
		return dto.ReminderReport{}, err
	}

	report := dto.ReminderReport{ProblemsChecked: len(closing)}
	if len(closing) == 0 {
		return report, nil
	}

	recipients, err := s.participants.ListRecipients(ctx)
	if err != nil {
		return report, err
	}

	for _, problem := range closing {
		submissions, err := s.submissions.ListByProblem(ctx, problem.ID)
		if err != nil {
			s.logger.Error().Err(err).Uint("problem_id", problem.ID).Msg("failed to list submitters for reminder")
			continue
		}

		submitted := make(map[uint]struct{}, len(submissions))
		for _, submission := range submissions {
			submitted[submission.ParticipantID] = struct{}{}
		}

		message := s.templates.RenderReminder(problem)
		for _, recipient := range recipients {
			if _, ok := submitted[recipient.ID]; ok {
				continue
			}

			result := dto.RecipientResult{ChatID: recipient.ChatID, Delivered: true}
			if err := s.notifier.Notify(ctx, recipient.ChatID, message); err != nil {
				result.Delivered = false
				result.Error = err.Error()
				observability.NotificationFailures().WithLabelValues("reminder").Inc()
				s.logger.Warn().Err(err).
					Int64("chat_id", recipient.ChatID).
					Uint("problem_id", problem.ID).
					Msg("failed to deliver deadline reminder")
			}
			report.Notices = append(report.Notices, result)
		}
	}

	return report, nil
}
