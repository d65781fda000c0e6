package models

import (
	"strings"
	"time"
)

// Problem represents a daily challenge published to participants.
type Problem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Text        string     `gorm:"type:text;not null" json:"text"`
	ImageURL    string     `gorm:"size:512" json:"image_url"`
	Difficulty  string     `gorm:"size:16;not null" json:"difficulty"`
	Category    string     `gorm:"size:64;not null" json:"category"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at"`
	ClosedAt    *time.Time `gorm:"index" json:"closed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Recognized difficulty tiers.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Coin rewards per difficulty tier.
const (
	RewardEasy   = 5
	RewardMedium = 10
	RewardHard   = 15
)

// RewardForDifficulty maps a difficulty tier to its coin reward.
// Unrecognized tiers fall back to the medium reward.
func RewardForDifficulty(difficulty string) int {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case DifficultyEasy:
		return RewardEasy
	case DifficultyHard:
		return RewardHard
	default:
		return RewardMedium
	}
}

// Reward returns the coin amount awarded for an approved solution.
func (p Problem) Reward() int {
	return RewardForDifficulty(p.Difficulty)
}

// IsExpired reports whether the deadline has passed at the reference time.
func (p Problem) IsExpired(reference time.Time) bool {
	return reference.After(p.Deadline)
}

// IsClosed reports whether the deadline sweep has already processed the problem.
func (p Problem) IsClosed() bool {
	return p.ClosedAt != nil
}
