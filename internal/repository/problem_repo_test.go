package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProblemDueForDispatchOrdersAndFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewProblemRepository(db)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	first := seedProblem(t, db, "easy", now.Add(24*time.Hour), &past)
	seedProblem(t, db, "easy", now.Add(24*time.Hour), &future)
	second := seedProblem(t, db, "hard", now.Add(24*time.Hour), &past)
	seedProblem(t, db, "medium", now.Add(24*time.Hour), nil)

	due, err := repo.DueForDispatch(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, first.ID, due[0].ID)
	require.Equal(t, second.ID, due[1].ID)
}

func TestProblemMarkDispatchedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewProblemRepository(db)
	ctx := context.Background()
	now := time.Now()

	past := now.Add(-time.Minute)
	problem := seedProblem(t, db, "easy", now.Add(24*time.Hour), &past)

	require.NoError(t, repo.MarkDispatched(ctx, problem.ID))
	require.NoError(t, repo.MarkDispatched(ctx, problem.ID))

	due, err := repo.DueForDispatch(ctx, now)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestProblemListExpiredOpenSkipsClosed(t *testing.T) {
	db := newTestDB(t)
	repo := NewProblemRepository(db)
	ctx := context.Background()
	now := time.Now()

	expired := seedProblem(t, db, "easy", now.Add(-time.Hour), nil)
	closed := seedProblem(t, db, "easy", now.Add(-2*time.Hour), nil)
	seedProblem(t, db, "easy", now.Add(time.Hour), nil)

	closedAt := now.Add(-time.Hour)
	require.NoError(t, db.Model(&closed).Update("closed_at", closedAt).Error)

	open, err := repo.ListExpiredOpen(ctx, now)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, expired.ID, open[0].ID)

	all, err := repo.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestProblemDeadlineBetween(t *testing.T) {
	db := newTestDB(t)
	repo := NewProblemRepository(db)
	ctx := context.Background()
	now := time.Now()

	closing := seedProblem(t, db, "easy", now.Add(30*time.Minute), nil)
	seedProblem(t, db, "easy", now.Add(2*time.Hour), nil)
	seedProblem(t, db, "easy", now.Add(-time.Minute), nil)

	problems, err := repo.DeadlineBetween(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, problems, 1)
	require.Equal(t, closing.ID, problems[0].ID)
}

func TestProblemListFiltersByCategoryAndLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewProblemRepository(db)
	ctx := context.Background()
	now := time.Now()

	seedProblem(t, db, "easy", now.Add(time.Hour), nil)
	algebra := seedProblem(t, db, "hard", now.Add(time.Hour), nil)

	require.NoError(t, db.Model(&algebra).Update("category", "Geometry").Error)

	problems, err := repo.List(ctx, ProblemFilter{Category: "geometry"})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	require.Equal(t, algebra.ID, problems[0].ID)

	limited, err := repo.List(ctx, ProblemFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, algebra.ID, limited[0].ID)
}

func TestProblemLatestReturnsNewest(t *testing.T) {
	db := newTestDB(t)
	repo := NewProblemRepository(db)
	ctx := context.Background()
	now := time.Now()

	seedProblem(t, db, "easy", now.Add(time.Hour), nil)
	newest := seedProblem(t, db, "hard", now.Add(time.Hour), nil)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, newest.ID, latest.ID)
}
