package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-challenge-api/internal/repository"
)

// ErrParticipantNotFound indicates the referenced participant does not exist.
var ErrParticipantNotFound = errors.New("participant not found")

// ErrNegativeAmount indicates a credit or debit with a negative amount.
var ErrNegativeAmount = errors.New("amount must not be negative")

// LedgerService owns participant coin balances.
type LedgerService interface {
	// Credit increases the balance by amount and returns the new balance.
	Credit(ctx context.Context, participantID uint, amount int) (int, error)
	// Debit decreases the balance by amount, clamped at a floor of zero,
	// and returns the new balance.
	Debit(ctx context.Context, participantID uint, amount int) (int, error)
	Balance(ctx context.Context, participantID uint) (int, error)
}

type ledgerService struct {
	participants repository.ParticipantRepository
	logger       zerolog.Logger
}

// NewLedgerService constructs the ledger service.
func NewLedgerService(participants repository.ParticipantRepository, logger zerolog.Logger) LedgerService {
	return &ledgerService{
		participants: participants,
		logger:       logger.With().Str("component", "ledger_service").Logger(),
	}
}

func (s *ledgerService) Credit(ctx context.Context, participantID uint, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	balance, err := s.participants.AddCoins(ctx, participantID, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrParticipantNotFound
		}
		return 0, err
	}

	s.logger.Info().Uint("participant_id", participantID).Int("amount", amount).Int("balance", balance).Msg("coins credited")
	return balance, nil
}

func (s *ledgerService) Debit(ctx context.Context, participantID uint, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	balance, err := s.participants.AddCoins(ctx, participantID, -amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrParticipantNotFound
		}
		return 0, err
	}

	s.logger.Info().Uint("participant_id", participantID).Int("amount", amount).Int("balance", balance).Msg("coins debited")
	return balance, nil
}

func (s *ledgerService) Balance(ctx context.Context, participantID uint) (int, error) {
	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrParticipantNotFound
		}
		return 0, err
	}

	return participant.Coins, nil
}
