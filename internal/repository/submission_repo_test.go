package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

func TestSubmissionCreateRejectsDuplicatePair(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	participant := seedParticipant(t, db, 100, 0, false)
	problem := seedProblem(t, db, "easy", time.Now().Add(time.Hour), nil)
	seedSubmission(t, db, problem.ID, participant.ID, models.SubmissionStatusPending)

	duplicate := models.Submission{
		ProblemID:     problem.ID,
		ParticipantID: participant.ID,
		PhotoURL:      "https://cdn.example/another.jpg",
		Status:        models.SubmissionStatusPending,
	}
	err := repo.Create(ctx, &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestApproveAndCreditAwardsExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	participant := seedParticipant(t, db, 200, 0, false)
	problem := seedProblem(t, db, "easy", now.Add(time.Hour), nil)
	submission := seedSubmission(t, db, problem.ID, participant.ID, models.SubmissionStatusPending)

	approved, balance, err := repo.ApproveAndCredit(ctx, submission.ID, now)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedAt)
	require.Equal(t, models.RewardEasy, balance)

	// A second approval must not credit again.
	_, _, err = repo.ApproveAndCredit(ctx, submission.ID, now)
	require.ErrorIs(t, err, ErrSubmissionNotPending)

	var stored models.Participant
	require.NoError(t, db.First(&stored, participant.ID).Error)
	require.Equal(t, models.RewardEasy, stored.Coins)
}

func TestApproveAndCreditUnknownSubmission(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)

	_, _, err := repo.ApproveAndCredit(context.Background(), 999, time.Now())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRejectRecordsFeedbackOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	participant := seedParticipant(t, db, 300, 0, false)
	problem := seedProblem(t, db, "medium", now.Add(time.Hour), nil)
	submission := seedSubmission(t, db, problem.ID, participant.ID, models.SubmissionStatusPending)

	rejected, err := repo.Reject(ctx, submission.ID, "wrong sign in step 2", now)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, rejected.Status)
	require.Equal(t, "wrong sign in step 2", rejected.Feedback)

	_, err = repo.Reject(ctx, submission.ID, "again", now)
	require.ErrorIs(t, err, ErrSubmissionNotPending)
}

func TestDeleteRejectedRequiresRejectedState(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	participant := seedParticipant(t, db, 400, 0, false)
	problem := seedProblem(t, db, "easy", now.Add(time.Hour), nil)
	pending := seedSubmission(t, db, problem.ID, participant.ID, models.SubmissionStatusPending)

	_, err := repo.DeleteRejected(ctx, pending.ID)
	require.ErrorIs(t, err, ErrSubmissionNotRejected)

	_, err = repo.Reject(ctx, pending.ID, "redo it", now)
	require.NoError(t, err)

	deleted, err := repo.DeleteRejected(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, participant.ID, deleted.ParticipantID)

	// The pair is free again, so a fresh submission is accepted.
	fresh := models.Submission{
		ProblemID:     problem.ID,
		ParticipantID: participant.ID,
		PhotoURL:      "https://cdn.example/retry.jpg",
		Status:        models.SubmissionStatusPending,
	}
	require.NoError(t, repo.Create(ctx, &fresh))
}

func TestAutoRejectExpiredPendingIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	first := seedParticipant(t, db, 500, 0, false)
	second := seedParticipant(t, db, 501, 0, false)
	problem := seedProblem(t, db, "easy", now.Add(-time.Hour), nil)
	seedSubmission(t, db, problem.ID, first.ID, models.SubmissionStatusPending)
	seedSubmission(t, db, problem.ID, second.ID, models.SubmissionStatusApproved)

	changed, err := repo.AutoRejectExpiredPending(ctx, problem.ID, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), changed)

	changed, err = repo.AutoRejectExpiredPending(ctx, problem.ID, now)
	require.NoError(t, err)
	require.Zero(t, changed)
}

func TestSweepProblemPenalizesOnlyAbsentees(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	submitted := seedParticipant(t, db, 600, 10, false)
	absent := seedParticipant(t, db, 601, 10, false)
	poor := seedParticipant(t, db, 602, 1, false)
	seedParticipant(t, db, 603, 10, true)

	problem := seedProblem(t, db, "easy", now.Add(-time.Hour), nil)
	seedSubmission(t, db, problem.ID, submitted.ID, models.SubmissionStatusRejected)

	sweep, err := repo.SweepProblem(ctx, problem.ID, 2, now)
	require.NoError(t, err)
	require.True(t, sweep.Closed)
	require.Len(t, sweep.Penalties, 2)

	require.Equal(t, absent.ID, sweep.Penalties[0].ParticipantID)
	require.Equal(t, 8, sweep.Penalties[0].Balance)

	// A balance below the penalty clamps at zero instead of going negative.
	require.Equal(t, poor.ID, sweep.Penalties[1].ParticipantID)
	require.Equal(t, 0, sweep.Penalties[1].Balance)

	var untouched models.Participant
	require.NoError(t, db.First(&untouched, submitted.ID).Error)
	require.Equal(t, 10, untouched.Coins)
}

func TestSweepProblemSecondRunIsNoOp(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	absent := seedParticipant(t, db, 700, 10, false)
	problem := seedProblem(t, db, "easy", now.Add(-time.Hour), nil)

	first, err := repo.SweepProblem(ctx, problem.ID, 2, now)
	require.NoError(t, err)
	require.True(t, first.Closed)
	require.Len(t, first.Penalties, 1)

	second, err := repo.SweepProblem(ctx, problem.ID, 2, now.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, second.Closed)
	require.Empty(t, second.Penalties)

	var stored models.Participant
	require.NoError(t, db.First(&stored, absent.ID).Error)
	require.Equal(t, 8, stored.Coins)
}

func TestSweepProblemAutoRejectsPendingStragglers(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	straggler := seedParticipant(t, db, 800, 10, false)
	problem := seedProblem(t, db, "easy", now.Add(-time.Hour), nil)
	submission := seedSubmission(t, db, problem.ID, straggler.ID, models.SubmissionStatusPending)

	sweep, err := repo.SweepProblem(ctx, problem.ID, 2, now)
	require.NoError(t, err)
	require.True(t, sweep.Closed)
	require.Equal(t, int64(1), sweep.AutoRejected)

	// Having submitted, even late, exempts the owner from the penalty.
	require.Empty(t, sweep.Penalties)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusAutoRejected, stored.Status)
}

func TestCountByStatusGroupsRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	first := seedParticipant(t, db, 900, 0, false)
	second := seedParticipant(t, db, 901, 0, false)
	third := seedParticipant(t, db, 902, 0, false)
	problem := seedProblem(t, db, "easy", now.Add(time.Hour), nil)

	seedSubmission(t, db, problem.ID, first.ID, models.SubmissionStatusApproved)
	seedSubmission(t, db, problem.ID, second.ID, models.SubmissionStatusApproved)
	seedSubmission(t, db, problem.ID, third.ID, models.SubmissionStatusPending)

	counts, err := repo.CountByStatus(ctx, problem.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[models.SubmissionStatusApproved])
	require.Equal(t, int64(1), counts[models.SubmissionStatusPending])
	require.Zero(t, counts[models.SubmissionStatusRejected])
}

func TestGetByIDPreloadsAssociations(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()
	now := time.Now()

	participant := seedParticipant(t, db, 1000, 0, false)
	problem := seedProblem(t, db, "hard", now.Add(time.Hour), nil)
	submission := seedSubmission(t, db, problem.ID, participant.ID, models.SubmissionStatusPending)

	loaded, err := repo.GetByID(ctx, submission.ID)
	require.NoError(t, err)
	require.Equal(t, problem.ID, loaded.Problem.ID)
	require.Equal(t, participant.ChatID, loaded.Participant.ChatID)
}
