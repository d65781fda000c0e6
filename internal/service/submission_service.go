package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/observability"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// ErrSubmissionNotFound indicates the referenced submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrDuplicateSubmission indicates the participant already has a live
// submission for the problem.
var ErrDuplicateSubmission = errors.New("submission already exists for this problem")

// ErrInvalidTransition indicates a review action attempted on a submission
// that is not in the required source state.
var ErrInvalidTransition = errors.New("submission is not in the required state")

// ErrEmptyFeedback indicates a rejection without usable feedback text.
var ErrEmptyFeedback = errors.New("rejection feedback must not be empty")

// ErrUnsupportedMedia indicates the uploaded file is not an image.
var ErrUnsupportedMedia = errors.New("uploaded file must be an image")

// ErrNotSubmissionOwner indicates a chat acting on a submission it does not own.
var ErrNotSubmissionOwner = errors.New("submission belongs to another participant")

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService owns the submission lifecycle: photo intake, operator
// review transitions, and the coupled coin mutations.
type SubmissionService interface {
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	ListByProblem(ctx context.Context, problemID uint) ([]dto.SubmissionResponse, error)
	// ListByParticipant returns a participant's submission history, newest
	// first.
	ListByParticipant(ctx context.Context, participantID uint) ([]dto.SubmissionResponse, error)
	// CreateFromUpload validates and stores the uploaded photo, then records
	// a pending submission.
	CreateFromUpload(ctx context.Context, participantID, problemID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	// CreateFromMedia records a pending submission for an already-stored
	// photo, e.g. one relayed by the chat gateway.
	CreateFromMedia(ctx context.Context, participantID, problemID uint, photoURL string) (dto.SubmissionResponse, error)
	// Approve transitions a pending submission to approved and credits the
	// owner's reward in the same transaction.
	Approve(ctx context.Context, id uint) (dto.ReviewResult, error)
	// Reject transitions a pending submission to rejected with feedback.
	Reject(ctx context.Context, id uint, feedback string) (dto.ReviewResult, error)
	// Resubmit deletes a rejected submission and re-opens photo intake for
	// its owner. Only the operator surface may call it without an ownership
	// check; callers acting on behalf of a chat use ResubmitOwned.
	Resubmit(ctx context.Context, id uint) (dto.ResubmitResponse, error)
	// ResubmitOwned is Resubmit gated on ownership: the requesting chat must
	// own the submission or be the operator.
	ResubmitOwned(ctx context.Context, id uint, requesterChatID int64) (dto.ResubmitResponse, error)
	// AutoRejectExpiredPending closes out pending submissions of an expired
	// problem; repeated calls change nothing.
	AutoRejectExpiredPending(ctx context.Context, problemID uint, now time.Time) (int64, error)
}

type submissionService struct {
	submissions    repository.SubmissionRepository
	problems       repository.ProblemRepository
	participants   repository.ParticipantRepository
	conversations  repository.ConversationRepository
	validator      *validator.Validate
	uploader       FileUploader
	notifier       Notifier
	templates      MessageTemplates
	sanitizer      *bluemonday.Policy
	operatorChatID int64
	logger         zerolog.Logger
	now            func() time.Time
}

// NewSubmissionService constructs the submission lifecycle service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	problems repository.ProblemRepository,
	participants repository.ParticipantRepository,
	conversations repository.ConversationRepository,
	validate *validator.Validate,
	uploader FileUploader,
	notifier Notifier,
	templates MessageTemplates,
	operatorChatID int64,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions:    submissions,
		problems:       problems,
		participants:   participants,
		conversations:  conversations,
		validator:      validate,
		uploader:       uploader,
		notifier:       notifier,
		templates:      templates,
		sanitizer:      bluemonday.StrictPolicy(),
		operatorChatID: operatorChatID,
		logger:         logger.With().Str("component", "submission_service").Logger(),
		now:            time.Now,
	}
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByProblem(ctx context.Context, problemID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission))
	}

	return responses, nil
}

func (s *submissionService) ListByParticipant(ctx context.Context, participantID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewSubmissionResponse(submission))
	}

	return responses, nil
}

func (s *submissionService) CreateFromUpload(ctx context.Context, participantID, problemID uint, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if file == nil {
		return dto.SubmissionResponse{}, ErrUnsupportedMedia
	}

	src, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to sniff upload: %w", err)
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		return dto.SubmissionResponse{}, ErrUnsupportedMedia
	}

	if _, err := src.Seek(0, 0); err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to rewind upload: %w", err)
	}

	name := fmt.Sprintf("submission-%d-%d-%s", participantID, problemID, uuid.NewString())
	photoURL, err := s.uploader.Upload(ctx, name, src)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to store photo: %w", err)
	}

	return s.CreateFromMedia(ctx, participantID, problemID, photoURL)
}

func (s *submissionService) CreateFromMedia(ctx context.Context, participantID, problemID uint, photoURL string) (dto.SubmissionResponse, error) {
	if strings.TrimSpace(photoURL) == "" {
		return dto.SubmissionResponse{}, ErrUnsupportedMedia
	}

	if _, err := s.participants.GetByID(ctx, participantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrParticipantNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.problems.GetByID(ctx, problemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProblemNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	exists, err := s.submissions.Exists(ctx, participantID, problemID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if exists {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}

	submission := models.Submission{
		ProblemID:     problemID,
		ParticipantID: participantID,
		PhotoURL:      photoURL,
		Status:        models.SubmissionStatusPending,
	}

	// The unique index backs up the existence check: a concurrent create for
	// the same pair loses here instead of inserting a second live row.
	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("participant_id", participantID).
		Uint("problem_id", problemID).
		Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Approve(ctx context.Context, id uint) (dto.ReviewResult, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-challenge-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.approve")
	span.SetAttributes(attribute.Int64("review.submission_id", int64(id)))
	defer span.End()

	submission, balance, err := s.submissions.ApproveAndCredit(ctx, id, s.now())
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.ReviewResult{}, ErrSubmissionNotFound
		case errors.Is(err, repository.ErrSubmissionNotPending):
			span.SetStatus(codes.Error, "invalid_transition")
			return dto.ReviewResult{}, ErrInvalidTransition
		default:
			span.SetStatus(codes.Error, "approve_failed")
			return dto.ReviewResult{}, err
		}
	}

	reward := submission.Problem.Reward()
	observability.Reviews().WithLabelValues("approved").Inc()
	span.SetAttributes(attribute.Int("review.reward", reward))

	s.notifyBestEffort(ctx, submission.Participant.ChatID, s.templates.RenderApproved(reward, balance))

	return dto.ReviewResult{
		Submission: dto.NewSubmissionResponse(submission),
		Reward:     reward,
		Balance:    balance,
	}, nil
}

func (s *submissionService) Reject(ctx context.Context, id uint, feedback string) (dto.ReviewResult, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-challenge-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.reject")
	span.SetAttributes(attribute.Int64("review.submission_id", int64(id)))
	defer span.End()

	clean := strings.TrimSpace(s.sanitizer.Sanitize(feedback))
	if clean == "" {
		span.SetStatus(codes.Error, "empty_feedback")
		return dto.ReviewResult{}, ErrEmptyFeedback
	}

	submission, err := s.submissions.Reject(ctx, id, clean, s.now())
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.ReviewResult{}, ErrSubmissionNotFound
		case errors.Is(err, repository.ErrSubmissionNotPending):
			span.SetStatus(codes.Error, "invalid_transition")
			return dto.ReviewResult{}, ErrInvalidTransition
		default:
			span.SetStatus(codes.Error, "reject_failed")
			return dto.ReviewResult{}, err
		}
	}

	observability.Reviews().WithLabelValues("rejected").Inc()

	balance := submission.Participant.Coins
	s.notifyBestEffort(ctx, submission.Participant.ChatID, s.templates.RenderRejected(clean, balance))

	return dto.ReviewResult{
		Submission: dto.NewSubmissionResponse(submission),
		Balance:    balance,
	}, nil
}

func (s *submissionService) Resubmit(ctx context.Context, id uint) (dto.ResubmitResponse, error) {
	submission, err := s.submissions.DeleteRejected(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.ResubmitResponse{}, ErrSubmissionNotFound
		case errors.Is(err, repository.ErrSubmissionNotRejected):
			return dto.ResubmitResponse{}, ErrInvalidTransition
		default:
			return dto.ResubmitResponse{}, err
		}
	}

	problemID := submission.ProblemID
	conversation := models.Conversation{
		ChatID:    submission.Participant.ChatID,
		State:     models.ConversationStateAwaitingPhoto,
		ProblemID: &problemID,
	}
	if err := s.conversations.Save(ctx, &conversation); err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", conversation.ChatID).Msg("failed to re-open photo intake")
	}

	s.logger.Info().
		Uint("submission_id", id).
		Uint("participant_id", submission.ParticipantID).
		Uint("problem_id", problemID).
		Msg("rejected submission deleted for resubmission")

	return dto.ResubmitResponse{
		ParticipantID: submission.ParticipantID,
		ChatID:        submission.Participant.ChatID,
		ProblemID:     problemID,
	}, nil
}

func (s *submissionService) ResubmitOwned(ctx context.Context, id uint, requesterChatID int64) (dto.ResubmitResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResubmitResponse{}, ErrSubmissionNotFound
		}
		return dto.ResubmitResponse{}, err
	}

	if submission.Participant.ChatID != requesterChatID && requesterChatID != s.operatorChatID {
		s.logger.Warn().
			Uint("submission_id", id).
			Int64("chat_id", requesterChatID).
			Msg("resubmit refused for non-owner")
		return dto.ResubmitResponse{}, ErrNotSubmissionOwner
	}

	return s.Resubmit(ctx, id)
}

func (s *submissionService) AutoRejectExpiredPending(ctx context.Context, problemID uint, now time.Time) (int64, error) {
	changed, err := s.submissions.AutoRejectExpiredPending(ctx, problemID, now)
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		s.logger.Info().Uint("problem_id", problemID).Int64("count", changed).Msg("pending submissions auto-rejected")
	}

	return changed, nil
}

func (s *submissionService) notifyBestEffort(ctx context.Context, chatID int64, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, chatID, message); err != nil {
		observability.NotificationFailures().WithLabelValues("review").Inc()
		s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to deliver review notice")
	}
}
