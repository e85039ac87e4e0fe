package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes err as an error envelope with the status of its kind.
func RespondError(c *gin.Context, err error) {
	p := apperr.Present(err)
	if p.Status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "code", p.Code, "error", err)
	}
	c.AbortWithStatusJSON(p.Status, ErrorEnvelope{
		Error: APIError{
			Message: p.Message,
			Code:    p.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
