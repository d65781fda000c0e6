package dto

// RecipientResult records one best-effort delivery attempt during fan-out.
type RecipientResult struct {
	ChatID    int64  `json:"chat_id"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// DispatchReport summarizes one dispatch pass.
type DispatchReport struct {
	Problems   []ProblemDispatchReport `json:"problems"`
	Dispatched int                     `json:"dispatched"`
}

// ProblemDispatchReport summarizes the fan-out of a single problem.
type ProblemDispatchReport struct {
	ProblemID  uint              `json:"problem_id"`
	Recipients []RecipientResult `json:"recipients"`
	Delivered  int               `json:"delivered"`
	Failed     int               `json:"failed"`
}

// SweepReport summarizes one deadline sweep pass.
type SweepReport struct {
	Problems []ProblemSweepReport `json:"problems"`
}

// ProblemSweepReport summarizes the sweep of a single expired problem.
type ProblemSweepReport struct {
	ProblemID    uint              `json:"problem_id"`
	Penalized    int               `json:"penalized"`
	AutoRejected int64             `json:"auto_rejected"`
	Notices      []RecipientResult `json:"notices"`
}

// ReminderReport summarizes one reminder pass.
type ReminderReport struct {
	ProblemsChecked int               `json:"problems_checked"`
	Notices         []RecipientResult `json:"notices"`
}
