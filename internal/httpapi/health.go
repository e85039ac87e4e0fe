package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

type HealthHandler struct {
	service     string
	aiAvailable func() bool
}

func NewHealthHandler(service string, aiAvailable func() bool) *HealthHandler {
	return &HealthHandler{service: service, aiAvailable: aiAvailable}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	RespondOK(c, models.HealthResponse{
		Status:      "healthy",
		Service:     h.service,
		Timestamp:   time.Now().UTC(),
		AIAvailable: h.aiAvailable != nil && h.aiAvailable(),
	})
}
