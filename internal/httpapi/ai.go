package httpapi

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/services"
)

type AIHandler struct {
	orchestrator *services.Orchestrator
}

func NewAIHandler(orchestrator *services.Orchestrator) *AIHandler {
	return &AIHandler{orchestrator: orchestrator}
}

// Summarize handles POST /documents/:id/summarize?max_length=500.
func (h *AIHandler) Summarize(c *gin.Context) {
	maxLength, err := queryInt(c, "max_length", services.DefaultSummaryLength)
	if err != nil {
		RespondError(c, err)
		return
	}

	resp, err := h.orchestrator.Summarize(c.Request.Context(), c.Param("id"), maxLength)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

// Answer handles POST /documents/:id/qa.
func (h *AIHandler) Answer(c *gin.Context) {
	docID := c.Param("id")

	var req models.QARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: request body must be JSON with a question", apperr.ErrValidation))
		return
	}
	if req.DocID != "" && req.DocID != docID {
		RespondError(c, fmt.Errorf("%w: doc_id in body does not match the URL", apperr.ErrValidation))
		return
	}

	resp, err := h.orchestrator.Answer(c.Request.Context(), docID, req.Question)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}
