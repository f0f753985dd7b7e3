package api

import (
	"net/http"

	"neurobridge/backend/internal/emotion"
	"neurobridge/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// EmotionHandler exposes the classifier over HTTP
type EmotionHandler struct {
	classifier emotion.Classifier
}

func NewEmotionHandler(classifier emotion.Classifier) *EmotionHandler {
	return &EmotionHandler{classifier: classifier}
}

func (h *EmotionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze/emotion", h.AnalyzeEmotion)
}

// AnalyzeEmotion handles POST /api/analyze/emotion
func (h *EmotionHandler) AnalyzeEmotion(c *gin.Context) {
	var req models.AnalyzeEmotionRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	c.JSON(http.StatusOK, models.AnalyzeEmotionResponse{
		Emotion: h.classifier.Classify(*req.Text),
		Text:    *req.Text,
	})
}
