package service

import (
	"context"

	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/store"
	"neurobridge/backend/pkg/logger"
	"neurobridge/backend/pkg/observability"
)

// ConversationService exposes conversation operations to the HTTP layer
type ConversationService struct {
	conversations store.ConversationStore
	metrics       *observability.Metrics
	log           *logger.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(conversations store.ConversationStore, metrics *observability.Metrics, log *logger.Logger) *ConversationService {
	if log == nil {
		log = logger.GetGlobal()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &ConversationService{conversations: conversations, metrics: metrics, log: log}
}

// CreateConversation opens an empty conversation for userID
func (s *ConversationService) CreateConversation(ctx context.Context, userID string) (models.Conversation, error) {
	conv, err := s.conversations.Create(ctx, userID)
	if err != nil {
		return models.Conversation{}, err
	}
	s.metrics.ConversationCreated(ctx)
	s.log.Info("Conversation created", "conversation_id", conv.ID, "user_id", userID)
	return conv, nil
}

// GetConversation returns a snapshot of the conversation
func (s *ConversationService) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	return s.conversations.Get(ctx, id)
}

// ListUserConversations returns the user's conversations in creation order
func (s *ConversationService) ListUserConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID)
}
