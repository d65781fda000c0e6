package dto

import (
	"time"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// ParticipantRegisterRequest describes the registration payload.
type ParticipantRegisterRequest struct {
	ChatID    int64  `json:"chat_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required,min=1,max=255"`
	LastName  string `json:"last_name" validate:"required,min=1,max=255"`
	Phone     string `json:"phone" validate:"required,min=5,max=32"`
	Language  string `json:"language" validate:"omitempty,oneof=uz en"`
}

// CoinAdjustmentRequest describes a manual operator balance correction.
type CoinAdjustmentRequest struct {
	Amount int    `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

// CoinAdjustmentResponse reports the balance after an adjustment.
type CoinAdjustmentResponse struct {
	ParticipantID uint `json:"participant_id"`
	Amount        int  `json:"amount"`
	Balance       int  `json:"balance"`
}

// ParticipantResponse is returned to API clients when viewing participants.
type ParticipantResponse struct {
	ID         uint      `json:"id"`
	ChatID     int64     `json:"chat_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Coins      int       `json:"coins"`
	Language   string    `json:"language"`
	IsOperator bool      `json:"is_operator"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewParticipantResponse maps a participant model to its API representation.
func NewParticipantResponse(participant models.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:         participant.ID,
		ChatID:     participant.ChatID,
		FirstName:  participant.FirstName,
		LastName:   participant.LastName,
		Phone:      participant.Phone,
		Coins:      participant.Coins,
		Language:   participant.Language,
		IsOperator: participant.IsOperator,
		CreatedAt:  participant.CreatedAt,
	}
}

// LeaderboardEntry is one row of the coin leaderboard.
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Coins int    `json:"coins"`
}

// NewLeaderboard builds ranked entries from participants ordered by coins.
func NewLeaderboard(participants []models.Participant) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(participants))
	for i, participant := range participants {
		entries = append(entries, LeaderboardEntry{
			Rank:  i + 1,
			Name:  participant.FullName(),
			Coins: participant.Coins,
		})
	}

	return entries
}
