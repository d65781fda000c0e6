package models

import "time"

// Participant represents a registered challenge player reachable through the chat gateway.
type Participant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChatID     int64     `gorm:"uniqueIndex;not null" json:"chat_id"`
	FirstName  string    `gorm:"size:255;not null" json:"first_name"`
	LastName   string    `gorm:"size:255;not null" json:"last_name"`
	Phone      string    `gorm:"size:32;not null" json:"phone"`
	Coins      int       `gorm:"not null;default:0" json:"coins"`
	Language   string    `gorm:"size:8;not null;default:'uz'" json:"language"`
	IsOperator bool      `gorm:"not null;default:false" json:"is_operator"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName joins the registered name fields for display.
func (p Participant) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
