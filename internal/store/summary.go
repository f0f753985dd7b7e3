package store

import (
	"context"
	"errors"
	"sync"

	"neurobridge/backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SummaryStore keeps one emotion summary per client session
type SummaryStore interface {
	// Upsert inserts the summary or replaces the timeline and score of the
	// existing one, keeping its ID and CreatedAt
	Upsert(ctx context.Context, summary models.SessionSummary) (models.SessionSummary, error)
	Get(ctx context.Context, sessionID string) (models.SessionSummary, error)
	Count() int
}

// MemorySummaryStore implements SummaryStore with a mutex-guarded map
type MemorySummaryStore struct {
	mu        sync.RWMutex
	summaries map[string]models.SessionSummary
	nextID    int64
}

// NewMemorySummaryStore creates an empty in-memory summary store
func NewMemorySummaryStore() *MemorySummaryStore {
	return &MemorySummaryStore{summaries: make(map[string]models.SessionSummary)}
}

func (s *MemorySummaryStore) Upsert(_ context.Context, summary models.SessionSummary) (models.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.summaries[summary.SessionID]; ok {
		summary.ID = existing.ID
		summary.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		summary.ID = s.nextID
		summary.CreatedAt = now()
	}

	stored := summary.Clone()
	s.summaries[summary.SessionID] = stored
	return stored.Clone(), nil
}

func (s *MemorySummaryStore) Get(_ context.Context, sessionID string) (models.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[sessionID]
	if !ok {
		return models.SessionSummary{}, ErrSessionNotFound
	}
	return summary.Clone(), nil
}

func (s *MemorySummaryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries)
}
