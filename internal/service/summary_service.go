package service

import (
	"context"
	"time"

	"neurobridge/backend/internal/models"
	"neurobridge/backend/internal/store"
	"neurobridge/backend/pkg/logger"
)

// SummaryService records per-session emotion timelines reported by clients
// and aggregates them for the dashboard
type SummaryService struct {
	summaries store.SummaryStore
	log       *logger.Logger
	now       func() time.Time
}

// NewSummaryService creates a new summary service
func NewSummaryService(summaries store.SummaryStore, log *logger.Logger) *SummaryService {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &SummaryService{
		summaries: summaries,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SaveSummary normalizes the submitted timeline and stores it, replacing any
// earlier summary for the same session
func (s *SummaryService) SaveSummary(ctx context.Context, req models.SaveSummaryRequest) (models.SessionSummary, error) {
	summary := models.SessionSummary{
		SessionID:       req.SessionID,
		EmotionTimeline: models.EmotionTimeline{Emotions: []models.EmotionReading{}},
	}
	if req.EmpathyScore != nil {
		summary.EmpathyScore = *req.EmpathyScore
	}
	if req.EmotionTimeline != nil {
		for _, in := range req.EmotionTimeline.Emotions {
			reading := models.EmotionReading{
				Emotion:    in.Emotion,
				Confidence: in.Confidence,
				Timestamp:  s.now(),
			}
			if in.Timestamp != nil {
				reading.Timestamp = in.Timestamp.UTC()
			}
			summary.EmotionTimeline.Emotions = append(summary.EmotionTimeline.Emotions, reading)
		}
	}

	saved, err := s.summaries.Upsert(ctx, summary)
	if err != nil {
		return models.SessionSummary{}, err
	}
	s.log.Info("Emotion summary saved",
		"session_id", saved.SessionID,
		"readings", len(saved.EmotionTimeline.Emotions),
	)
	return saved, nil
}

// Dashboard returns the emotion distribution of the session's stored summary
func (s *SummaryService) Dashboard(ctx context.Context, sessionID string) (models.DashboardData, error) {
	summary, err := s.summaries.Get(ctx, sessionID)
	if err != nil {
		return models.DashboardData{}, err
	}

	distribution := make(map[string]int)
	for _, reading := range summary.EmotionTimeline.Emotions {
		distribution[reading.Emotion]++
	}

	return models.DashboardData{
		SessionID: sessionID,
		EmotionSummary: models.EmotionDashboard{
			TotalEmotions:       len(summary.EmotionTimeline.Emotions),
			EmotionDistribution: distribution,
			AverageEmpathy:      summary.EmpathyScore,
			Timeline:            summary.EmotionTimeline,
		},
	}, nil
}
