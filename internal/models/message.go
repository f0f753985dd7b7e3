package models

import (
	"time"

	"neurobridge/backend/internal/emotion"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether s is a known sender
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Message is a single turn in a conversation. Messages are immutable once
// appended.
type Message struct {
	Content   string        `json:"content"`
	Sender    Sender        `json:"sender"`
	Timestamp time.Time     `json:"timestamp"`
	Emotion   emotion.Label `json:"emotion,omitempty"`
}
