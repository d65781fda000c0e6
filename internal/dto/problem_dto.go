package dto

import (
	"time"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// ProblemCreateRequest describes the operator payload for publishing a problem.
// SendNow dispatches immediately; otherwise ScheduledAt holds the problem for
// the dispatch engine.
type ProblemCreateRequest struct {
	Text        string     `json:"text" validate:"required,min=1"`
	ImageURL    string     `json:"image_url" validate:"omitempty,url"`
	Difficulty  string     `json:"difficulty" validate:"required"`
	Category    string     `json:"category" validate:"required,min=1,max=64"`
	Deadline    time.Time  `json:"deadline" validate:"required"`
	SendNow     bool       `json:"send_now"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// ProblemListRequest describes query filters for browsing problems.
type ProblemListRequest struct {
	Category string `query:"category"`
	Today    bool   `query:"today"`
	Limit    int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
}

// ProblemResponse is returned to API clients when viewing problems.
type ProblemResponse struct {
	ID          uint       `json:"id"`
	Text        string     `json:"text"`
	ImageURL    string     `json:"image_url"`
	Difficulty  string     `json:"difficulty"`
	Category    string     `json:"category"`
	Reward      int        `json:"reward"`
	Deadline    time.Time  `json:"deadline"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewProblemResponse maps a problem model to its API representation.
func NewProblemResponse(problem models.Problem) ProblemResponse {
	return ProblemResponse{
		ID:          problem.ID,
		Text:        problem.Text,
		ImageURL:    problem.ImageURL,
		Difficulty:  problem.Difficulty,
		Category:    problem.Category,
		Reward:      problem.Reward(),
		Deadline:    problem.Deadline,
		ScheduledAt: problem.ScheduledAt,
		ClosedAt:    problem.ClosedAt,
		CreatedAt:   problem.CreatedAt,
	}
}

// NewProblemResponseSlice maps a slice of problems.
func NewProblemResponseSlice(problems []models.Problem) []ProblemResponse {
	responses := make([]ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		responses = append(responses, NewProblemResponse(problem))
	}

	return responses
}
