package dto

// GatewayMessageRequest is one inbound chat update relayed by the messaging
// gateway. Exactly one of Text, PhotoURL, or Action is expected to be set.
type GatewayMessageRequest struct {
	ChatID       int64  `json:"chat_id" validate:"required"`
	Text         string `json:"text"`
	PhotoURL     string `json:"photo_url" validate:"omitempty,url"`
	Action       string `json:"action" validate:"omitempty,oneof=start submit resubmit reject"`
	ProblemID    uint   `json:"problem_id"`
	SubmissionID uint   `json:"submission_id"`
}

// GatewayReply tells the gateway what to send back to the chat.
type GatewayReply struct {
	Message string `json:"message"`
	Done    bool   `json:"done"`
}
