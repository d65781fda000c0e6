package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// ProblemFilter narrows problem listings.
type ProblemFilter struct {
	Category     string
	CreatedAfter *time.Time
	Limit        int
}

// ProblemRepository defines persistence operations for challenge problems.
type ProblemRepository interface {
	Create(ctx context.Context, problem *models.Problem) error
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	List(ctx context.Context, filter ProblemFilter) ([]models.Problem, error)
	Latest(ctx context.Context) (models.Problem, error)
	// DueForDispatch returns problems whose scheduled send-time has arrived,
	// in id ascending order for deterministic fan-out.
	DueForDispatch(ctx context.Context, now time.Time) ([]models.Problem, error)
	// MarkDispatched clears the scheduled marker. It is a no-op when the
	// problem was already dispatched.
	MarkDispatched(ctx context.Context, id uint) error
	// ListExpired returns every problem whose deadline has passed, regardless
	// of dispatch or sweep state.
	ListExpired(ctx context.Context, now time.Time) ([]models.Problem, error)
	// ListExpiredOpen returns expired problems the deadline sweep has not yet
	// closed, in id ascending order.
	ListExpiredOpen(ctx context.Context, now time.Time) ([]models.Problem, error)
	// DeadlineBetween returns problems whose deadline falls inside (from, to].
	DeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Problem, error)
}

type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository instantiates a GORM-backed repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) Create(ctx context.Context, problem *models.Problem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}

	return problem, nil
}

func (r *problemRepository) List(ctx context.Context, filter ProblemFilter) ([]models.Problem, error) {
	query := r.db.WithContext(ctx).Model(&models.Problem{})

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var problems []models.Problem
	if err := query.Order("id DESC").Find(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}

func (r *problemRepository) Latest(ctx context.Context) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).Order("id DESC").First(&problem).Error; err != nil {
		return models.Problem{}, err
	}

	return problem, nil
}

func (r *problemRepository) DueForDispatch(ctx context.Context, now time.Time) ([]models.Problem, error) {
	var problems []models.Problem
	if err := r.db.WithContext(ctx).
		Where("scheduled_at IS NOT NULL AND scheduled_at <= ?", now).
		Order("id ASC").
		Find(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}

func (r *problemRepository) MarkDispatched(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Problem{}).
		Where("id = ?", id).
		Update("scheduled_at", nil).Error
}

func (r *problemRepository) ListExpired(ctx context.Context, now time.Time) ([]models.Problem, error) {
	var problems []models.Problem
	if err := r.db.WithContext(ctx).
		Where("deadline < ?", now).
		Order("id ASC").
		Find(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}

func (r *problemRepository) ListExpiredOpen(ctx context.Context, now time.Time) ([]models.Problem, error) {
	var problems []models.Problem
	if err := r.db.WithContext(ctx).
		Where("deadline < ? AND closed_at IS NULL", now).
		Order("id ASC").
		Find(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}

func (r *problemRepository) DeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Problem, error) {
	var problems []models.Problem
	if err := r.db.WithContext(ctx).
		Where("deadline > ? AND deadline <= ?", from, to).
		Order("id ASC").
		Find(&problems).Error; err != nil {
		return nil, err
	}

	return problems, nil
}
