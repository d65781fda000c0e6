package dto

import "time"

// ProblemStats reports the review breakdown for one problem.
type ProblemStats struct {
	ProblemID    uint      `json:"problem_id"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	Deadline     time.Time `json:"deadline"`
	Approved     int64     `json:"approved"`
	Rejected     int64     `json:"rejected"`
	Pending      int64     `json:"pending"`
	AutoRejected int64     `json:"auto_rejected"`
}

// StatsOverview aggregates operator-facing statistics.
type StatsOverview struct {
	TotalParticipants int64         `json:"total_participants"`
	TotalCoins        int64         `json:"total_coins"`
	LatestProblem     *ProblemStats `json:"latest_problem"`
}
