package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
)

func TestCatalogCreateRejectsPastDeadline(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	_, err := catalog.Create(context.Background(), dto.ProblemCreateRequest{
		Text:       "Integrate x^2",
		Difficulty: "easy",
		Category:   "calculus",
		Deadline:   time.Now().Add(-time.Hour),
	})
	require.ErrorIs(t, err, ErrInvalidDeadline)
}

func TestCatalogCreateDefaultsScheduleToNextMidnight(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	problem, err := catalog.Create(context.Background(), dto.ProblemCreateRequest{
		Text:       "Integrate x^2",
		Difficulty: "Easy",
		Category:   "calculus",
		Deadline:   time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, problem.ScheduledAt)
	require.Equal(t, 0, problem.ScheduledAt.Hour())
	require.Equal(t, 0, problem.ScheduledAt.Minute())
	require.True(t, problem.ScheduledAt.After(time.Now()))
	require.Equal(t, "easy", problem.Difficulty)
	require.Equal(t, models.RewardEasy, problem.Reward)
}

func TestCatalogCreateSendNowSkipsSchedule(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	problem, err := catalog.Create(context.Background(), dto.ProblemCreateRequest{
		Text:       "Integrate x^2",
		Difficulty: "hard",
		Category:   "calculus",
		Deadline:   time.Now().Add(24 * time.Hour),
		SendNow:    true,
	})
	require.NoError(t, err)
	require.Nil(t, problem.ScheduledAt)

	due, err := catalog.DueForDispatch(context.Background(), time.Now().Add(72*time.Hour))
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestCatalogCreateRejectsScheduleAfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	scheduled := time.Now().Add(48 * time.Hour)
	_, err := catalog.Create(context.Background(), dto.ProblemCreateRequest{
		Text:        "Integrate x^2",
		Difficulty:  "easy",
		Category:    "calculus",
		Deadline:    time.Now().Add(24 * time.Hour),
		ScheduledAt: &scheduled,
	})
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestCatalogCreateKeepsUnknownDifficultyWithMediumReward(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	problem, err := catalog.Create(context.Background(), dto.ProblemCreateRequest{
		Text:       "Prove the lemma",
		Difficulty: "brutal",
		Category:   "algebra",
		Deadline:   time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "brutal", problem.Difficulty)
	require.Equal(t, models.RewardMedium, problem.Reward)
}

func TestCatalogCreateStripsMarkup(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	problem, err := catalog.Create(context.Background(), dto.ProblemCreateRequest{
		Text:       "<script>alert(1)</script>Solve for x",
		Difficulty: "easy",
		Category:   "algebra",
		Deadline:   time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "Solve for x", problem.Text)
}

func TestCatalogGetUnknownProblem(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	_, err := catalog.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrProblemNotFound)
}

func TestCatalogListTodayFilter(t *testing.T) {
	env := newTestEnv(t)
	catalog := env.catalogService()

	old := env.seedProblem(t, "easy", time.Now().Add(time.Hour), nil)
	require.NoError(t, env.db.Model(&old).Update("created_at", time.Now().AddDate(0, 0, -2)).Error)
	fresh := env.seedProblem(t, "hard", time.Now().Add(time.Hour), nil)

	problems, err := catalog.List(context.Background(), dto.ProblemListRequest{Today: true})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	require.Equal(t, fresh.ID, problems[0].ID)
}
