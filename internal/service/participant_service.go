package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/dto"
	"github.com/noah-isme/gema-challenge-api/internal/models"
	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// ErrDuplicateParticipant indicates the chat already has a registered participant.
var ErrDuplicateParticipant = errors.New("participant already registered")

// ParticipantService owns participant registration and profile lookups.
type ParticipantService interface {
	Register(ctx context.Context, payload dto.ParticipantRegisterRequest) (dto.ParticipantResponse, error)
	GetByChatID(ctx context.Context, chatID int64) (dto.ParticipantResponse, error)
}

type participantService struct {
	participants   repository.ParticipantRepository
	validator      *validator.Validate
	sanitizer      *bluemonday.Policy
	operatorChatID int64
	logger         zerolog.Logger
}

// NewParticipantService constructs the participant service.
func NewParticipantService(participants repository.ParticipantRepository, validate *validator.Validate, operatorChatID int64, logger zerolog.Logger) ParticipantService {
	return &participantService{
		participants:   participants,
		validator:      validate,
		sanitizer:      bluemonday.StrictPolicy(),
		operatorChatID: operatorChatID,
		logger:         logger.With().Str("component", "participant_service").Logger(),
	}
}

func (s *participantService) Register(ctx context.Context, payload dto.ParticipantRegisterRequest) (dto.ParticipantResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ParticipantResponse{}, err
	}

	language := payload.Language
	if language == "" {
		language = "uz"
	}

	participant := models.Participant{
		ChatID:     payload.ChatID,
		FirstName:  strings.TrimSpace(s.sanitizer.Sanitize(payload.FirstName)),
		LastName:   strings.TrimSpace(s.sanitizer.Sanitize(payload.LastName)),
		Phone:      strings.TrimSpace(payload.Phone),
		Language:   language,
		IsOperator: payload.ChatID == s.operatorChatID,
	}

	if err := s.participants.Create(ctx, &participant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ParticipantResponse{}, ErrDuplicateParticipant
		}
		return dto.ParticipantResponse{}, err
	}

	s.logger.Info().Int64("chat_id", participant.ChatID).Uint("participant_id", participant.ID).Msg("participant registered")

	return dto.NewParticipantResponse(participant), nil
}

func (s *participantService) GetByChatID(ctx context.Context, chatID int64) (dto.ParticipantResponse, error) {
	participant, err := s.participants.GetByChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ParticipantResponse{}, ErrParticipantNotFound
		}
		return dto.ParticipantResponse{}, err
	}

	return dto.NewParticipantResponse(participant), nil
}
