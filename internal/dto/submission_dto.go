package dto

import (
	"time"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// SubmissionRejectRequest carries the operator's rejection feedback.
type SubmissionRejectRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID            uint       `json:"id"`
	ProblemID     uint       `json:"problem_id"`
	ParticipantID uint       `json:"participant_id"`
	PhotoURL      string     `json:"photo_url"`
	Status        string     `json:"status"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	Feedback      string     `json:"feedback"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewSubmissionResponse maps a submission model to its API representation.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:            submission.ID,
		ProblemID:     submission.ProblemID,
		ParticipantID: submission.ParticipantID,
		PhotoURL:      submission.PhotoURL,
		Status:        submission.Status,
		ReviewedAt:    submission.ReviewedAt,
		Feedback:      submission.Feedback,
		CreatedAt:     submission.CreatedAt,
	}
}

// ReviewResult reports the outcome of an approve or reject transition.
type ReviewResult struct {
	Submission SubmissionResponse `json:"submission"`
	Reward     int                `json:"reward,omitempty"`
	Balance    int                `json:"balance"`
}

// ResubmitRequest identifies the chat asking to replace its rejected
// submission.
type ResubmitRequest struct {
	ChatID int64 `json:"chat_id" validate:"required"`
}

// ResubmitResponse identifies the pair whose photo intake re-opened.
type ResubmitResponse struct {
	ParticipantID uint  `json:"participant_id"`
	ChatID        int64 `json:"chat_id"`
	ProblemID     uint  `json:"problem_id"`
}
