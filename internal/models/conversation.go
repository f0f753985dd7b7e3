package models

import (
	"time"

	"neurobridge/backend/internal/emotion"
)

// Conversation is an append-only log of messages owned by one user.
// EmotionSummary counts the messages per emotion label and is kept in step
// with Messages on every append.
type Conversation struct {
	ID             string                `json:"id"`
	UserID         string                `json:"user_id"`
	Messages       []Message             `json:"messages"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	EmotionSummary map[emotion.Label]int `json:"emotion_summary"`
}

// Clone returns a deep copy that shares no slices or maps with c
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	out.EmotionSummary = make(map[emotion.Label]int, len(c.EmotionSummary))
	for label, count := range c.EmotionSummary {
		out.EmotionSummary[label] = count
	}
	return out
}

// CreateConversationRequest is the request structure for opening a conversation
type CreateConversationRequest struct {
	UserID string `form:"user_id" json:"user_id" binding:"required"`
}

// AnalyzeEmotionRequest is the request structure for ad-hoc emotion analysis.
// Text must be present but may be empty.
type AnalyzeEmotionRequest struct {
	Text *string `form:"text" json:"text" binding:"required"`
}

// AnalyzeEmotionResponse is returned by the emotion analysis endpoint
type AnalyzeEmotionResponse struct {
	Emotion emotion.Label `json:"emotion"`
	Text    string        `json:"text"`
}
