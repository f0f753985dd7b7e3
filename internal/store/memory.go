package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"neurobridge/backend/internal/emotion"
	"neurobridge/backend/internal/models"
)

// now is swapped in tests to control timestamps
var now = func() time.Time { return time.Now().UTC() }

// MemoryUserStore implements UserStore with a mutex-guarded map
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryUserStore creates an empty in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

// Create registers a new user with a fresh identifier
func (s *MemoryUserStore) Create(_ context.Context, name string, email *string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, ErrNameRequired
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now(),
	}
	if email != nil {
		e := *email
		user.Email = &e
	}

	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()

	return user, nil
}

// Get retrieves a user by identifier
func (s *MemoryUserStore) Get(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// Exists reports whether a user with the given identifier is registered
func (s *MemoryUserStore) Exists(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// Count returns the number of registered users
func (s *MemoryUserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// conversationEntry guards one conversation. Appends to different
// conversations never contend with each other.
type conversationEntry struct {
	mu   sync.Mutex
	conv models.Conversation
}

// MemoryConversationStore implements ConversationStore in memory.
// The map lock protects membership and ordering only; each entry carries its
// own lock for message appends.
type MemoryConversationStore struct {
	users UserStore

	mu      sync.RWMutex
	entries map[string]*conversationEntry
	order   []string
}

// NewMemoryConversationStore creates an empty conversation store that checks
// ownership against users
func NewMemoryConversationStore(users UserStore) *MemoryConversationStore {
	return &MemoryConversationStore{
		users:   users,
		entries: make(map[string]*conversationEntry),
	}
}

// Create opens an empty conversation for an existing user
func (s *MemoryConversationStore) Create(ctx context.Context, userID string) (models.Conversation, error) {
	if !s.users.Exists(ctx, userID) {
		return models.Conversation{}, ErrUserNotFound
	}

	ts := now()
	entry := &conversationEntry{
		conv: models.Conversation{
			ID:             uuid.NewString(),
			UserID:         userID,
			Messages:       make([]models.Message, 0, 16),
			CreatedAt:      ts,
			UpdatedAt:      ts,
			EmotionSummary: make(map[emotion.Label]int),
		},
	}

	s.mu.Lock()
	s.entries[entry.conv.ID] = entry
	s.order = append(s.order, entry.conv.ID)
	s.mu.Unlock()

	return entry.conv.Clone(), nil
}

// Append adds a message to a conversation, advances updated_at and bumps the
// emotion tally in one step. Unknown conversations are reported and left
// uncreated.
func (s *MemoryConversationStore) Append(_ context.Context, conversationID string, message models.Message) error {
	entry, ok := s.lookup(conversationID)
	if !ok {
		return ErrConversationNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.conv.Messages = append(entry.conv.Messages, message)
	if ts := now(); ts.After(entry.conv.UpdatedAt) {
		entry.conv.UpdatedAt = ts
	}
	if message.Emotion != "" {
		entry.conv.EmotionSummary[message.Emotion]++
	}
	return nil
}

// Get returns a snapshot of a conversation
func (s *MemoryConversationStore) Get(_ context.Context, conversationID string) (models.Conversation, error) {
	entry, ok := s.lookup(conversationID)
	if !ok {
		return models.Conversation{}, ErrConversationNotFound
	}
	return entry.snapshot(), nil
}

// ListByUser returns the user's conversations in creation order
func (s *MemoryConversationStore) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	if !s.users.Exists(ctx, userID) {
		return nil, ErrUserNotFound
	}

	s.mu.RLock()
	entries := make([]*conversationEntry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.entries[id])
	}
	s.mu.RUnlock()

	result := make([]models.Conversation, 0)
	for _, entry := range entries {
		conv := entry.snapshot()
		if conv.UserID == userID {
			result = append(result, conv)
		}
	}
	return result, nil
}

// Count returns the number of conversations
func (s *MemoryConversationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryConversationStore) lookup(id string) (*conversationEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	return entry, ok
}

func (e *conversationEntry) snapshot() models.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conv.Clone()
}
