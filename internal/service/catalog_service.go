package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// ErrProblemNotFound indicates the referenced problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// ErrInvalidDeadline indicates the deadline is missing or already in the past.
var ErrInvalidDeadline = errors.New("deadline must be in the future")

// ErrInvalidSchedule indicates the scheduled send-time does not precede the deadline.
var ErrInvalidSchedule = errors.New("scheduled time must precede the deadline")

// CatalogService owns problem records and their dispatch/deadline markers.
type CatalogService interface {
	Create(ctx context.Context, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error)
	Get(ctx context.Context, id uint) (dto.ProblemResponse, error)
	List(ctx context.Context, payload dto.ProblemListRequest) ([]dto.ProblemResponse, error)
	// DueForDispatch returns problems whose scheduled send-time has arrived.
	DueForDispatch(ctx context.Context, now time.Time) ([]models.Problem, error)
	// MarkDispatched clears the scheduled marker; calling it again is a no-op.
	MarkDispatched(ctx context.Context, problemID uint) error
	// Expired returns every problem whose deadline has passed.
	Expired(ctx context.Context, now time.Time) ([]models.Problem, error)
}

type catalogService struct {
	problems  repository.ProblemRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCatalogService constructs the problem catalog service.
func NewCatalogService(problems repository.ProblemRepository, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		problems:  problems,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "catalog_service").Logger(),
		now:       time.Now,
	}
}

func (s *catalogService) Create(ctx context.Context, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	now := s.now()
	if !payload.Deadline.After(now) {
		return dto.ProblemResponse{}, ErrInvalidDeadline
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))
	if text == "" {
		return dto.ProblemResponse{}, errors.New("problem text empty after sanitization")
	}

	scheduledAt := payload.ScheduledAt
	if payload.SendNow {
		// Immediate dispatch: the caller fans the problem out synchronously,
		// so no scheduled marker is stored.
		scheduledAt = nil
	} else if scheduledAt == nil {
		next := nextMidnight(now)
		scheduledAt = &next
	}

	if scheduledAt != nil && !scheduledAt.Before(payload.Deadline) {
		return dto.ProblemResponse{}, ErrInvalidSchedule
	}

	// Unrecognized difficulty tiers are kept as entered; the reward lookup
	// falls back to the medium tier rather than failing creation.
	problem := models.Problem{
		Text:        text,
		ImageURL:    strings.TrimSpace(payload.ImageURL),
		Difficulty:  strings.ToLower(strings.TrimSpace(payload.Difficulty)),
		Category:    strings.TrimSpace(payload.Category),
		Deadline:    payload.Deadline,
		ScheduledAt: scheduledAt,
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return dto.ProblemResponse{}, err
	}

	s.logger.Info().
		Uint("problem_id", problem.ID).
		Str("difficulty", problem.Difficulty).
		Bool("send_now", payload.SendNow).
		Time("deadline", problem.Deadline).
		Msg("problem created")

	return dto.NewProblemResponse(problem), nil
}

func (s *catalogService) Get(ctx context.Context, id uint) (dto.ProblemResponse, error) {
	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}

	return dto.NewProblemResponse(problem), nil
}

func (s *catalogService) List(ctx context.Context, payload dto.ProblemListRequest) ([]dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	filter := repository.ProblemFilter{
		Category: payload.Category,
		Limit:    payload.Limit,
	}

	if payload.Today {
		start := startOfDay(s.now())
		filter.CreatedAfter = &start
	}

	problems, err := s.problems.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewProblemResponseSlice(problems), nil
}

func (s *catalogService) DueForDispatch(ctx context.Context, now time.Time) ([]models.Problem, error) {
	return s.problems.DueForDispatch(ctx, now)
}

func (s *catalogService) MarkDispatched(ctx context.Context, problemID uint) error {
	return s.problems.MarkDispatched(ctx, problemID)
}

func (s *catalogService) Expired(ctx context.Context, now time.Time) ([]models.Problem, error) {
	return s.problems.ListExpired(ctx, now)
}

func startOfDay(reference time.Time) time.Time {
	return time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, reference.Location())
}

func nextMidnight(reference time.Time) time.Time {
	return startOfDay(reference).AddDate(0, 0, 1)
}
