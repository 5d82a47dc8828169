package models

import (
	"time"
)

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is a single entry in a conversation.
type ChatMessage struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation holds an ongoing dialogue with the assistant. Conversations
// are keyed by a caller-supplied session id so concurrent clients never share
// history. PdfText carries extracted document text used as model context.
type Conversation struct {
	BaseModel
	SessionID string        `gorm:"size:64;uniqueIndex;not null" json:"sessionId"`
	PdfText   string        `gorm:"type:longtext" json:"-"`
	Messages  []ChatMessage `gorm:"serializer:json;type:json" json:"messages"`
}

// Append adds a message to the conversation with the current time.
func (c *Conversation) Append(sender Sender, text string) {
	c.Messages = append(c.Messages, ChatMessage{
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	})
}
