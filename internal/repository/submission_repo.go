package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// ErrSubmissionNotPending signals a review transition attempted on a
// submission that already left the pending state.
var ErrSubmissionNotPending = errors.New("submission is not pending")

// ErrSubmissionNotRejected signals a resubmit attempted on a submission that
// is not in the rejected state.
var ErrSubmissionNotRejected = errors.New("submission is not rejected")

// PenaltyRecord describes a single penalty applied during a deadline sweep.
type PenaltyRecord struct {
	ParticipantID uint
	ChatID        int64
	Penalty       int
	Balance       int
}

// SweepResult summarizes what a sweep transaction changed for one problem.
type SweepResult struct {
	Closed       bool
	Penalties    []PenaltyRecord
	AutoRejected int64
}

// SubmissionRepository defines data operations for submissions and the
// review-state transitions coupled to the coin ledger.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Exists(ctx context.Context, participantID, problemID uint) (bool, error)
	// Create inserts a pending submission. The composite unique index on
	// (participant_id, problem_id) makes the check-then-insert race safe;
	// a concurrent duplicate surfaces as gorm.ErrDuplicatedKey.
	Create(ctx context.Context, submission *models.Submission) error
	ListByProblem(ctx context.Context, problemID uint) ([]models.Submission, error)
	ListByParticipant(ctx context.Context, participantID uint) ([]models.Submission, error)
	CountByStatus(ctx context.Context, problemID uint) (map[string]int64, error)
	// ApproveAndCredit marks a pending submission approved and credits the
	// owner's coin reward in the same transaction, so the status write and
	// the ledger mutation commit or roll back together.
	ApproveAndCredit(ctx context.Context, id uint, reviewedAt time.Time) (models.Submission, int, error)
	// Reject marks a pending submission rejected and records the feedback in
	// the same guarded write.
	Reject(ctx context.Context, id uint, feedback string, reviewedAt time.Time) (models.Submission, error)
	// DeleteRejected removes a rejected submission and returns the deleted
	// row so the caller can re-open photo intake for its owner.
	DeleteRejected(ctx context.Context, id uint) (models.Submission, error)
	// AutoRejectExpiredPending transitions every pending submission of the
	// problem to auto_rejected. Re-running it once all rows have moved past
	// pending changes nothing.
	AutoRejectExpiredPending(ctx context.Context, problemID uint, now time.Time) (int64, error)
	// SweepProblem closes an expired problem in one transaction: it claims
	// the problem, debits every non-operator participant with zero
	// submission rows, and auto-rejects pending stragglers. A second call
	// for an already-closed problem is a no-op.
	SweepProblem(ctx context.Context, problemID uint, penalty int, now time.Time) (SweepResult, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Problem").
		Preload("Participant")
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Exists(ctx context.Context, participantID, problemID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("participant_id = ? AND problem_id = ?", participantID, problemID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) ListByProblem(ctx context.Context, problemID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("problem_id = ?", problemID).
		Order("id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByParticipant(ctx context.Context, participantID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("participant_id = ?", participantID).
		Order("id DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) CountByStatus(ctx context.Context, problemID uint) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Total  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("status, COUNT(*) AS total").
		Where("problem_id = ?", problemID).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

func (r *submissionRepository) ApproveAndCredit(ctx context.Context, id uint, reviewedAt time.Time) (models.Submission, int, error) {
	var submission models.Submission
	var balance int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", id, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":      models.SubmissionStatusApproved,
				"reviewed_at": reviewedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var current models.Submission
			if err := tx.First(&current, id).Error; err != nil {
				return err
			}
			return ErrSubmissionNotPending
		}

		if err := tx.Preload("Problem").Preload("Participant").First(&submission, id).Error; err != nil {
			return err
		}

		reward := submission.Problem.Reward()
		if err := tx.Model(&models.Participant{}).
			Where("id = ?", submission.ParticipantID).
			Update("coins", gorm.Expr("coins + ?", reward)).Error; err != nil {
			return err
		}

		var participant models.Participant
		if err := tx.First(&participant, submission.ParticipantID).Error; err != nil {
			return err
		}

		balance = participant.Coins
		submission.Participant = participant
		return nil
	})
	if err != nil {
		return models.Submission{}, 0, err
	}

	return submission, balance, nil
}

func (r *submissionRepository) Reject(ctx context.Context, id uint, feedback string, reviewedAt time.Time) (models.Submission, error) {
	var submission models.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", id, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":      models.SubmissionStatusRejected,
				"feedback":    feedback,
				"reviewed_at": reviewedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var current models.Submission
			if err := tx.First(&current, id).Error; err != nil {
				return err
			}
			return ErrSubmissionNotPending
		}

		return tx.Preload("Problem").Preload("Participant").First(&submission, id).Error
	})
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) DeleteRejected(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Problem").Preload("Participant").First(&submission, id).Error; err != nil {
			return err
		}

		if submission.Status != models.SubmissionStatusRejected {
			return ErrSubmissionNotRejected
		}

		result := tx.Where("id = ? AND status = ?", id, models.SubmissionStatusRejected).
			Delete(&models.Submission{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubmissionNotRejected
		}

		return nil
	})
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) AutoRejectExpiredPending(ctx context.Context, problemID uint, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("problem_id = ? AND status = ?", problemID, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":      models.SubmissionStatusAutoRejected,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *submissionRepository) SweepProblem(ctx context.Context, problemID uint, penalty int, now time.Time) (SweepResult, error) {
	var sweep SweepResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claiming the problem first makes repeated sweeps no-ops: only the
		// transaction that flips closed_at applies penalties.
		claim := tx.Model(&models.Problem{}).
			Where("id = ? AND closed_at IS NULL", problemID).
			Update("closed_at", now)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return nil
		}
		sweep.Closed = true

		// Penalty eligibility is decided against this transaction's snapshot:
		// any submission row, in any status, permanently exempts its owner.
		submitted := tx.Model(&models.Submission{}).
			Select("participant_id").
			Where("problem_id = ?", problemID)

		var absent []models.Participant
		if err := tx.Model(&models.Participant{}).
			Where("is_operator = ? AND id NOT IN (?)", false, submitted).
			Order("id ASC").
			Find(&absent).Error; err != nil {
			return err
		}

		for _, participant := range absent {
			if err := tx.Model(&models.Participant{}).
				Where("id = ?", participant.ID).
				Update("coins", gorm.Expr("CASE WHEN coins - ? < 0 THEN 0 ELSE coins - ? END", penalty, penalty)).Error; err != nil {
				return err
			}

			var updated models.Participant
			if err := tx.First(&updated, participant.ID).Error; err != nil {
				return err
			}

			sweep.Penalties = append(sweep.Penalties, PenaltyRecord{
				ParticipantID: updated.ID,
				ChatID:        updated.ChatID,
				Penalty:       penalty,
				Balance:       updated.Coins,
			})
		}

		result := tx.Model(&models.Submission{}).
			Where("problem_id = ? AND status = ?", problemID, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":      models.SubmissionStatusAutoRejected,
				"reviewed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		sweep.AutoRejected = result.RowsAffected

		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}

	return sweep, nil
}
