package service

import (
	"context"
	"testing"
	"time"

	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/store"
	"neurobridge/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSummaryNormalizesReadings(t *testing.T) {
	svc := NewSummaryService(store.NewMemorySummaryStore(), logger.Discard())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stamp := time.Date(2024, 5, 1, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	score := 0.75
	saved, err := svc.SaveSummary(context.Background(), models.SaveSummaryRequest{
		SessionID: "s1",
		EmotionTimeline: &models.EmotionTimelineInput{Emotions: []models.EmotionReadingInput{
			{Emotion: "happy", Confidence: 0.9, Timestamp: &stamp},
			{Emotion: "sad"},
		}},
		EmpathyScore: &score,
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", saved.SessionID)
	assert.Equal(t, 0.75, saved.EmpathyScore)
	require.Len(t, saved.EmotionTimeline.Emotions, 2)
	assert.Equal(t, stamp.UTC(), saved.EmotionTimeline.Emotions[0].Timestamp)
	assert.Equal(t, fixed, saved.EmotionTimeline.Emotions[1].Timestamp)
	assert.Zero(t, saved.EmotionTimeline.Emotions[1].Confidence)
}

func TestDashboardAggregates(t *testing.T) {
	svc := NewSummaryService(store.NewMemorySummaryStore(), logger.Discard())
	ctx := context.Background()

	score := 0.5
	_, err := svc.SaveSummary(ctx, models.SaveSummaryRequest{
		SessionID: "s1",
		EmotionTimeline: &models.EmotionTimelineInput{Emotions: []models.EmotionReadingInput{
			{Emotion: "happy"}, {Emotion: "sad"}, {Emotion: "happy"},
		}},
		EmpathyScore: &score,
	})
	require.NoError(t, err)

	dash, err := svc.Dashboard(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", dash.SessionID)
	assert.Equal(t, 3, dash.EmotionSummary.TotalEmotions)
	assert.Equal(t, map[string]int{"happy": 2, "sad": 1}, dash.EmotionSummary.EmotionDistribution)
	assert.Equal(t, 0.5, dash.EmotionSummary.AverageEmpathy)
	assert.Len(t, dash.EmotionSummary.Timeline.Emotions, 3)

	_, err = svc.Dashboard(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
