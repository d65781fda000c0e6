package models

import "time"

// Submission represents a participant's photographic solution awaiting operator review.
type Submission struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ProblemID     uint        `gorm:"not null;uniqueIndex:idx_submissions_participant_problem" json:"problem_id"`
	ParticipantID uint        `gorm:"not null;uniqueIndex:idx_submissions_participant_problem" json:"participant_id"`
	PhotoURL      string      `gorm:"size:512;not null" json:"photo_url"`
	Status        string      `gorm:"size:32;not null" json:"status"`
	ReviewedAt    *time.Time  `json:"reviewed_at"`
	Feedback      string      `gorm:"type:text" json:"feedback"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Problem       Problem     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problem"`
	Participant   Participant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"participant"`
}

// Submission review states. A submission starts as pending and moves to exactly
// one terminal state; the only way back is the delete-and-recreate resubmit path.
const (
	SubmissionStatusPending      = "pending"
	SubmissionStatusApproved     = "approved"
	SubmissionStatusRejected     = "rejected"
	SubmissionStatusAutoRejected = "auto_rejected"
)

// IsReviewed reports whether the submission has reached a terminal state.
func (s Submission) IsReviewed() bool {
	return s.Status != SubmissionStatusPending
}
