package models

import "time"

// ChatMessage is one message in a request's chat.
type ChatMessage struct {
	ID         string     `bson:"id" json:"id"`
	RequestID  string     `bson:"requestId" json:"requestId"`
	SenderID   string     `bson:"senderId" json:"senderId"`
	SenderRole string     `bson:"senderRole" json:"senderRole"`
	Content    string     `bson:"content" json:"content"`
	Type       string     `bson:"type" json:"type"`
	Severity   string     `bson:"severity,omitempty" json:"severity,omitempty"`
	Queued     bool       `bson:"queued" json:"queued"`
	ReadAt     *time.Time `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
}

// Message types.
const (
	MessageText   = "text"
	MessageSystem = "system"
	MessageNudge  = "nudge"
	MessageInfo   = "info"

	SenderSystem = "system"

	SeverityYellow = "yellow"
	SeverityRed    = "red"
)

// SendMessageRequest is the body of the send endpoint.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessageResult is the stored message plus an optional note for the sender.
type SendMessageResult struct {
	*ChatMessage
	Info string `json:"info,omitempty"`
}
