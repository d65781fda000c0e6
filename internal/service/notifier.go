package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/gema-challenge-api/internal/models"
)

// Notifier delivers rendered messages to chat recipients through the
// messaging gateway. Delivery is best-effort; callers absorb failures.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, message string) error
	NotifyPhoto(ctx context.Context, chatID int64, photoURL, caption string) error
}

// NopNotifier discards every message. Used when no gateway is configured.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, int64, string) error { return nil }

// NotifyPhoto implements Notifier.
func (NopNotifier) NotifyPhoto(context.Context, int64, string, string) error { return nil }

// MessageTemplates maps message kinds to render templates. The set is a
// static configuration structure injected into the notification boundary.
type MessageTemplates struct {
	ProblemAnnouncement string
	DeadlineReminder    string
	PenaltyApplied      string
	SubmissionApproved  string
	SubmissionRejected  string
	PhotoPrompt         string
	AlreadySubmitted    string
	SubmissionReceived  string
}

// DefaultTemplates returns the stock message set.
func DefaultTemplates() MessageTemplates {
	return MessageTemplates{
		ProblemAnnouncement: "Daily problem #%d (%s - %s):\n\n%s\n\nDeadline: %s\nReward for a correct solution: %d coins",
		DeadlineReminder:    "One hour left for problem #%d (%s - %s)!\nSend your solution soon. Deadline: %s",
		PenaltyApplied:      "You missed problem #%d. %d coins deducted.\nCurrent balance: %d",
		SubmissionApproved:  "Your solution was approved! +%d coins.\nCurrent balance: %d",
		SubmissionRejected:  "Your solution was rejected.\nReason: %s\nCurrent balance: %d",
		PhotoPrompt:         "Send a photo of your solution:",
		AlreadySubmitted:    "You have already submitted a solution for this problem.",
		SubmissionReceived:  "Your solution was received. The operator will review it.",
	}
}

const deadlineLayout = "2006-01-02 15:04:05"

// RenderAnnouncement formats the problem fan-out message.
func (t MessageTemplates) RenderAnnouncement(problem models.Problem) string {
	return fmt.Sprintf(t.ProblemAnnouncement,
		problem.ID, problem.Category, problem.Difficulty,
		problem.Text, problem.Deadline.Format(deadlineLayout), problem.Reward())
}

// RenderReminder formats the pre-deadline reminder message. Problem text is
// truncated on a rune boundary so multi-byte prose is never cut mid-character.
func (t MessageTemplates) RenderReminder(problem models.Problem) string {
	text := problem.Text
	if runes := []rune(text); len(runes) > 100 {
		text = string(runes[:100]) + "..."
	}
	return fmt.Sprintf(t.DeadlineReminder,
		problem.ID, problem.Category, problem.Difficulty,
		problem.Deadline.Format(deadlineLayout)) + "\n" + text
}

// RenderPenalty formats the penalty notice with the new balance.
func (t MessageTemplates) RenderPenalty(problemID uint, penalty, balance int) string {
	return fmt.Sprintf(t.PenaltyApplied, problemID, penalty, balance)
}

// RenderApproved formats the approval notice.
func (t MessageTemplates) RenderApproved(reward, balance int) string {
	return fmt.Sprintf(t.SubmissionApproved, reward, balance)
}

// RenderRejected formats the rejection notice.
func (t MessageTemplates) RenderRejected(feedback string, balance int) string {
	return fmt.Sprintf(t.SubmissionRejected, feedback, balance)
}
