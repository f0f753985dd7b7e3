package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neurobridge/backend/internal/models"
)

func summary(sessionID string, score float64, emotions ...string) models.SessionSummary {
	s := models.SessionSummary{SessionID: sessionID, EmpathyScore: score}
	for _, e := range emotions {
		s.EmotionTimeline.Emotions = append(s.EmotionTimeline.Emotions, models.EmotionReading{
			Emotion:   e,
			Timestamp: time.Now().UTC(),
		})
	}
	return s
}

func TestSummaryUpsertInsertsThenReplaces(t *testing.T) {
	summaries := NewMemorySummaryStore()
	ctx := context.Background()

	first, err := summaries.Upsert(ctx, summary("s1", 0.4, "happy"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	other, err := summaries.Upsert(ctx, summary("s2", 0.1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.ID)

	second, err := summaries.Upsert(ctx, summary("s1", 0.9, "sad", "sad"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 0.9, second.EmpathyScore)
	assert.Len(t, second.EmotionTimeline.Emotions, 2)
	assert.Equal(t, 2, summaries.Count())
}

func TestSummaryGet(t *testing.T) {
	summaries := NewMemorySummaryStore()
	ctx := context.Background()

	_, err := summaries.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = summaries.Upsert(ctx, summary("s1", 0.5, "happy"))
	require.NoError(t, err)

	got, err := summaries.Get(ctx, "s1")
	require.NoError(t, err)
	got.EmotionTimeline.Emotions[0].Emotion = "tampered"

	again, err := summaries.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "happy", again.EmotionTimeline.Emotions[0].Emotion)
}
