package models

import "time"

// EmotionReading is one point on a session's emotion timeline
type EmotionReading struct {
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// EmotionTimeline is the ordered list of readings reported for a session
type EmotionTimeline struct {
	Emotions []EmotionReading `json:"emotions"`
}

// SessionSummary is the latest timeline and empathy score reported for a
// client session. Saving again for the same session replaces both.
type SessionSummary struct {
	ID              int64           `json:"id"`
	SessionID       string          `json:"session_id"`
	EmotionTimeline EmotionTimeline `json:"emotion_timeline"`
	EmpathyScore    float64         `json:"empathy_score"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Clone returns a copy that shares no slices with s
func (s SessionSummary) Clone() SessionSummary {
	out := s
	out.EmotionTimeline.Emotions = make([]EmotionReading, len(s.EmotionTimeline.Emotions))
	copy(out.EmotionTimeline.Emotions, s.EmotionTimeline.Emotions)
	return out
}

// EmotionReadingInput is a timeline entry as submitted; a missing
// timestamp means now
type EmotionReadingInput struct {
	Emotion    string     `json:"emotion"`
	Confidence float64    `json:"confidence"`
	Timestamp  *time.Time `json:"timestamp"`
}

// EmotionTimelineInput is the submitted timeline
type EmotionTimelineInput struct {
	Emotions []EmotionReadingInput `json:"emotions"`
}

// SaveSummaryRequest is the request structure for POST /emotion-summary
type SaveSummaryRequest struct {
	SessionID       string                `json:"session_id" binding:"required"`
	EmotionTimeline *EmotionTimelineInput `json:"emotion_timeline" binding:"required"`
	EmpathyScore    *float64              `json:"empathy_score" binding:"required"`
}

// EmotionDashboard aggregates a stored session summary
type EmotionDashboard struct {
	TotalEmotions       int             `json:"total_emotions"`
	EmotionDistribution map[string]int  `json:"emotion_distribution"`
	AverageEmpathy      float64         `json:"average_empathy"`
	Timeline            EmotionTimeline `json:"timeline"`
}

// DashboardData is the payload of GET /dashboard/:session_id
type DashboardData struct {
	SessionID      string           `json:"session_id"`
	EmotionSummary EmotionDashboard `json:"emotion_summary"`
}
