// Package store holds the user and conversation records behind small
// interfaces so callers never touch the underlying maps directly.
package store

import (
	"context"
	"errors"

	"neurobridge/backend/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNameRequired         = errors.New("user name is required")
)

// UserStore defines user persistence operations
type UserStore interface {
	Create(ctx context.Context, name string, email *string) (models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	Exists(ctx context.Context, id string) bool
	Count() int
}

// ConversationStore defines conversation persistence operations. Append is
// atomic per conversation: the message and its emotion_summary increment
// become visible together.
type ConversationStore interface {
	Create(ctx context.Context, userID string) (models.Conversation, error)
	Append(ctx context.Context, conversationID string, message models.Message) error
	Get(ctx context.Context, conversationID string) (models.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	Count() int
}
