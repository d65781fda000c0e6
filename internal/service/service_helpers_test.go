package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

type notice struct {
	chatID  int64
	message string
	photo   string
}

// fakeNotifier records deliveries and can be told to fail for specific chats.
type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
	failFor map[int64]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: map[int64]error{}}
}

func (f *fakeNotifier) Notify(_ context.Context, chatID int64, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.notices = append(f.notices, notice{chatID: chatID, message: message})
	return nil
}

func (f *fakeNotifier) NotifyPhoto(_ context.Context, chatID int64, photoURL, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.notices = append(f.notices, notice{chatID: chatID, message: caption, photo: photoURL})
	return nil
}

func (f *fakeNotifier) sent() []notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notice(nil), f.notices...)
}

func (f *fakeNotifier) messagesFor(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var messages []string
	for _, n := range f.notices {
		if n.chatID == chatID {
			messages = append(messages, n.message)
		}
	}
	return messages
}

type testEnv struct {
	db            *gorm.DB
	participants  repository.ParticipantRepository
	problems      repository.ProblemRepository
	submissions   repository.SubmissionRepository
	conversations repository.ConversationRepository
	notifier      *fakeNotifier
	templates     MessageTemplates
	validate      *validator.Validate
	logger        zerolog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		db:            db,
		participants:  repository.NewParticipantRepository(db),
		problems:      repository.NewProblemRepository(db),
		submissions:   repository.NewSubmissionRepository(db),
		conversations: repository.NewConversationRepository(db),
		notifier:      newFakeNotifier(),
		templates:     DefaultTemplates(),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        zerolog.Nop(),
	}
}

func (e *testEnv) submissionService() SubmissionService {
	return NewSubmissionService(e.submissions, e.problems, e.participants, e.conversations, e.validate, nil, e.notifier, e.templates, testOperatorChatID, e.logger)
}

func (e *testEnv) catalogService() CatalogService {
	return NewCatalogService(e.problems, e.validate, e.logger)
}

func (e *testEnv) seedParticipant(t *testing.T, chatID int64, coins int, operator bool) models.Participant {
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
	require.NoError(t, e.db.Create(&participant).Error)

	return participant
}

func (e *testEnv) seedProblem(t *testing.T, difficulty string, deadline time.Time, scheduledAt *time.Time) models.Problem {
	t.Helper()

	problem := models.Problem{
		Text:        "Solve the equation",
		Difficulty:  difficulty,
		Category:    "algebra",
		Deadline:    deadline,
		ScheduledAt: scheduledAt,
	}
	require.NoError(t, e.db.Create(&problem).Error)

	return problem
}

func (e *testEnv) seedSubmission(t *testing.T, problemID, participantID uint, status string) models.Submission {
	t.Helper()

	submission := models.Submission{
		ProblemID:     problemID,
		ParticipantID: participantID,
		PhotoURL:      "https://cdn.example/photo.jpg",
		Status:        status,
	}
	require.NoError(t, e.db.Create(&submission).Error)

	return submission
}
