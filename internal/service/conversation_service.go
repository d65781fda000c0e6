package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// Registration and review prompts sent back through the gateway.
const (
	promptFirstName     = "Enter your first name:"
	promptLastName      = "Enter your last name:"
	promptPhone         = "Enter your phone number:"
	promptFeedback      = "Enter the rejection reason:"
	replyWelcome        = "Registration complete. Wait for the next daily problem!"
	replyAlreadyKnown   = "You are already registered."
	replyFeedbackSaved  = "Feedback recorded and sent to the participant."
	replyNotUnderstood  = "Nothing to do here. Use the menu to pick an action."
	replyPhotoExpected  = "A photo is expected at this step."
	replyTextExpected   = "Plain text is expected at this step."
	replyMustRegister   = "Please register first with /start."
	replyProblemUnknown = "That problem no longer exists."
)

// ConversationService advances the per-chat dialogue state machine that the
// messaging gateway relays updates into: registration, photo intake, and
// rejection-feedback intake.
type ConversationService interface {
	HandleMessage(ctx context.Context, payload dto.GatewayMessageRequest) (dto.GatewayReply, error)
}

type conversationService struct {
	conversations  repository.ConversationRepository
	participants   repository.ParticipantRepository
	submissions    SubmissionService
	validator      *validator.Validate
	templates      MessageTemplates
	operatorChatID int64
	logger         zerolog.Logger
}

// NewConversationService constructs the gateway dialogue service.
func NewConversationService(
	conversations repository.ConversationRepository,
	participants repository.ParticipantRepository,
	submissions SubmissionService,
	validate *validator.Validate,
	templates MessageTemplates,
	operatorChatID int64,
	logger zerolog.Logger,
) ConversationService {
	return &conversationService{
		conversations:  conversations,
		participants:   participants,
		submissions:    submissions,
		validator:      validate,
		templates:      templates,
		operatorChatID: operatorChatID,
		logger:         logger.With().Str("component", "conversation_service").Logger(),
	}
}

func (s *conversationService) HandleMessage(ctx context.Context, payload dto.GatewayMessageRequest) (dto.GatewayReply, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GatewayReply{}, err
	}

	switch payload.Action {
	case "start":
		return s.handleStart(ctx, payload.ChatID)
	case "submit":
		return s.handleSubmitIntent(ctx, payload.ChatID, payload.ProblemID)
	case "resubmit":
		return s.handleResubmit(ctx, payload.ChatID, payload.SubmissionID)
	case "reject":
		return s.handleRejectIntent(ctx, payload.ChatID, payload.SubmissionID)
	}

	conversation, err := s.conversations.Get(ctx, payload.ChatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GatewayReply{Message: replyNotUnderstood, Done: true}, nil
		}
		return dto.GatewayReply{}, err
	}

	switch conversation.State {
	case models.ConversationStateAwaitingFirstName:
		return s.collect(ctx, conversation, payload.Text, "first_name", models.ConversationStateAwaitingLastName, promptLastName)
	case models.ConversationStateAwaitingLastName:
		return s.collect(ctx, conversation, payload.Text, "last_name", models.ConversationStateAwaitingPhone, promptPhone)
	case models.ConversationStateAwaitingPhone:
		return s.completeRegistration(ctx, conversation, payload.Text)
	case models.ConversationStateAwaitingPhoto:
		return s.receivePhoto(ctx, conversation, payload.PhotoURL)
	case models.ConversationStateAwaitingFeedback:
		return s.receiveFeedback(ctx, conversation, payload.Text)
	default:
		return dto.GatewayReply{Message: replyNotUnderstood, Done: true}, nil
	}
}

func (s *conversationService) handleStart(ctx context.Context, chatID int64) (dto.GatewayReply, error) {
	if _, err := s.participants.GetByChatID(ctx, chatID); err == nil {
		return dto.GatewayReply{Message: replyAlreadyKnown, Done: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.GatewayReply{}, err
	}

	conversation := models.Conversation{
		ChatID: chatID,
		State:  models.ConversationStateAwaitingFirstName,
		Data:   datatypes.JSONMap{},
	}
	if err := s.conversations.Save(ctx, &conversation); err != nil {
		return dto.GatewayReply{}, err
	}

	return dto.GatewayReply{Message: promptFirstName}, nil
}

func (s *conversationService) handleSubmitIntent(ctx context.Context, chatID int64, problemID uint) (dto.GatewayReply, error) {
	participant, err := s.participants.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GatewayReply{Message: replyMustRegister, Done: true}, nil
		}
		return dto.GatewayReply{}, err
	}

	id := problemID
	conversation := models.Conversation{
		ChatID:    chatID,
		State:     models.ConversationStateAwaitingPhoto,
		ProblemID: &id,
		Data:      datatypes.JSONMap{},
	}
	if err := s.conversations.Save(ctx, &conversation); err != nil {
		return dto.GatewayReply{}, err
	}

	s.logger.Debug().Int64("chat_id", chatID).Uint("problem_id", problemID).Uint("participant_id", participant.ID).Msg("photo intake opened")

	return dto.GatewayReply{Message: s.templates.PhotoPrompt}, nil
}

func (s *conversationService) handleResubmit(ctx context.Context, chatID int64, submissionID uint) (dto.GatewayReply, error) {
	result, err := s.submissions.ResubmitOwned(ctx, submissionID, chatID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubmissionNotFound), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotSubmissionOwner):
			return dto.GatewayReply{Message: replyNotUnderstood, Done: true}, nil
		default:
			return dto.GatewayReply{}, err
		}
	}

	s.logger.Info().Uint("problem_id", result.ProblemID).Int64("chat_id", result.ChatID).Msg("resubmission flow opened")

	return dto.GatewayReply{Message: s.templates.PhotoPrompt}, nil
}

func (s *conversationService) handleRejectIntent(ctx context.Context, chatID int64, submissionID uint) (dto.GatewayReply, error) {
	if chatID != s.operatorChatID {
		return dto.GatewayReply{Message: replyNotUnderstood, Done: true}, nil
	}

	id := submissionID
	conversation := models.Conversation{
		ChatID:       chatID,
		State:        models.ConversationStateAwaitingFeedback,
		SubmissionID: &id,
		Data:         datatypes.JSONMap{},
	}
	if err := s.conversations.Save(ctx, &conversation); err != nil {
		return dto.GatewayReply{}, err
	}

	return dto.GatewayReply{Message: promptFeedback}, nil
}

func (s *conversationService) collect(ctx context.Context, conversation models.Conversation, text, field, nextState, nextPrompt string) (dto.GatewayReply, error) {
	value := strings.TrimSpace(text)
	if value == "" {
		return dto.GatewayReply{Message: replyTextExpected}, nil
	}

	if conversation.Data == nil {
		conversation.Data = datatypes.JSONMap{}
	}
	conversation.Data[field] = value
	conversation.State = nextState

	if err := s.conversations.Save(ctx, &conversation); err != nil {
		return dto.GatewayReply{}, err
	}

	return dto.GatewayReply{Message: nextPrompt}, nil
}

func (s *conversationService) completeRegistration(ctx context.Context, conversation models.Conversation, phone string) (dto.GatewayReply, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return dto.GatewayReply{Message: replyTextExpected}, nil
	}

	payload := dto.ParticipantRegisterRequest{
		ChatID:    conversation.ChatID,
		FirstName: stringField(conversation.Data, "first_name"),
		LastName:  stringField(conversation.Data, "last_name"),
		Phone:     phone,
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.GatewayReply{}, err
	}

	participant := models.Participant{
		ChatID:     payload.ChatID,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Phone:      payload.Phone,
		Language:   "uz",
		IsOperator: payload.ChatID == s.operatorChatID,
	}
	if err := s.participants.Create(ctx, &participant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if clearErr := s.conversations.Clear(ctx, conversation.ChatID); clearErr != nil {
				s.logger.Warn().Err(clearErr).Int64("chat_id", conversation.ChatID).Msg("failed to clear conversation")
			}
			return dto.GatewayReply{Message: replyAlreadyKnown, Done: true}, nil
		}
		return dto.GatewayReply{}, err
	}

	if err := s.conversations.Clear(ctx, conversation.ChatID); err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", conversation.ChatID).Msg("failed to clear conversation")
	}

	s.logger.Info().Int64("chat_id", participant.ChatID).Uint("participant_id", participant.ID).Msg("participant registered")

	return dto.GatewayReply{Message: replyWelcome, Done: true}, nil
}

func (s *conversationService) receivePhoto(ctx context.Context, conversation models.Conversation, photoURL string) (dto.GatewayReply, error) {
	if strings.TrimSpace(photoURL) == "" {
		return dto.GatewayReply{Message: replyPhotoExpected}, nil
	}

	if conversation.ProblemID == nil {
		return dto.GatewayReply{Message: replyNotUnderstood, Done: true}, nil
	}

	participant, err := s.participants.GetByChatID(ctx, conversation.ChatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GatewayReply{Message: replyMustRegister, Done: true}, nil
		}
		return dto.GatewayReply{}, err
	}

	_, err = s.submissions.CreateFromMedia(ctx, participant.ID, *conversation.ProblemID, photoURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateSubmission):
			if clearErr := s.conversations.Clear(ctx, conversation.ChatID); clearErr != nil {
				s.logger.Warn().Err(clearErr).Int64("chat_id", conversation.ChatID).Msg("failed to clear conversation")
			}
			return dto.GatewayReply{Message: s.templates.AlreadySubmitted, Done: true}, nil
		case errors.Is(err, ErrProblemNotFound):
			return dto.GatewayReply{Message: replyProblemUnknown, Done: true}, nil
		default:
			return dto.GatewayReply{}, err
		}
	}

	if err := s.conversations.Clear(ctx, conversation.ChatID); err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", conversation.ChatID).Msg("failed to clear conversation")
	}

	return dto.GatewayReply{Message: s.templates.SubmissionReceived, Done: true}, nil
}

func (s *conversationService) receiveFeedback(ctx context.Context, conversation models.Conversation, text string) (dto.GatewayReply, error) {
	if conversation.SubmissionID == nil {
		return dto.GatewayReply{Message: replyNotUnderstood, Done: true}, nil
	}

	_, err := s.submissions.Reject(ctx, *conversation.SubmissionID, text)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFeedback):
			return dto.GatewayReply{Message: replyTextExpected}, nil
		case errors.Is(err, ErrSubmissionNotFound), errors.Is(err, ErrInvalidTransition):
			return dto.GatewayReply{Message: replyNotUnderstood, Done: true}, nil
		default:
			return dto.GatewayReply{}, err
		}
	}

	if err := s.conversations.Clear(ctx, conversation.ChatID); err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", conversation.ChatID).Msg("failed to clear conversation")
	}

	return dto.GatewayReply{Message: replyFeedbackSaved, Done: true}, nil
}

func stringField(data datatypes.JSONMap, key string) string {
	if data == nil {
		return ""
	}
	if value, ok := data[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
