package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Participant{},
		&models.Problem{},
		&models.Submission{},
		&models.Conversation{},
	))

	return db
}

func seedParticipant(t *testing.T, db *gorm.DB, chatID int64, coins int, operator bool) models.Participant {
	t.Helper()

	participant := models.Participant{
		ChatID:     chatID,
		FirstName:  "Test",
		LastName:   fmt.Sprintf("User%d", chatID),
		Phone:      fmt.Sprintf("+99890%07d", chatID),
		Coins:      coins,
		Language:   "uz",
		IsOperator: operator,
	}
	require.NoError(t, db.Create(&participant).Error)

	return participant
}

func seedProblem(t *testing.T, db *gorm.DB, difficulty string, deadline time.Time, scheduledAt *time.Time) models.Problem {
	t.Helper()

	problem := models.Problem{
		Text:        "Solve the equation",
		Difficulty:  difficulty,
		Category:    "algebra",
		Deadline:    deadline,
		ScheduledAt: scheduledAt,
	}
	require.NoError(t, db.Create(&problem).Error)

	return problem
}

func seedSubmission(t *testing.T, db *gorm.DB, problemID, participantID uint, status string) models.Submission {
	t.Helper()

	submission := models.Submission{
		ProblemID:     problemID,
		ParticipantID: participantID,
		PhotoURL:      "https://cdn.example/photo.jpg",
		Status:        status,
	}
	require.NoError(t, db.Create(&submission).Error)

	return submission
}
