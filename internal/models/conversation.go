package models

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation tracks the per-chat dialogue step so multi-message flows
// (registration, photo intake, rejection feedback) survive process restarts.
type Conversation struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ChatID       int64             `gorm:"uniqueIndex;not null" json:"chat_id"`
	State        string            `gorm:"size:32;not null" json:"state"`
	ProblemID    *uint             `json:"problem_id"`
	SubmissionID *uint             `json:"submission_id"`
	Data         datatypes.JSONMap `json:"data"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Conversation states.
const (
	ConversationStateAwaitingFirstName = "awaiting_first_name"
	ConversationStateAwaitingLastName  = "awaiting_last_name"
	ConversationStateAwaitingPhone     = "awaiting_phone"
	ConversationStateAwaitingPhoto     = "awaiting_photo"
	ConversationStateAwaitingFeedback  = "awaiting_feedback"
)
