package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/services"
)

var errRouteNotFound = fmt.Errorf("%w: no such route", apperr.ErrNotFound)

type DocumentHandler struct {
	ingestor      *services.Ingestor
	documents     *services.DocumentService
	maxUploadSize int64
}

func NewDocumentHandler(ingestor *services.Ingestor, documents *services.DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{ingestor: ingestor, documents: documents, maxUploadSize: maxUploadSize}
}

// Upload ingests the multipart "file" field.
func (h *DocumentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, fmt.Errorf("%w: multipart field \"file\" is required", apperr.ErrValidation))
		return
	}
	if header.Size > h.maxUploadSize {
		RespondError(c, fmt.Errorf("%w: file size exceeds maximum allowed size of %.1fMB",
			apperr.ErrValidation, float64(h.maxUploadSize)/(1024*1024)))
		return
	}

	file, err := header.Open()
	if err != nil {
		RespondError(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		RespondError(c, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	result, err := h.ingestor.Ingest(c.Request.Context(), &services.IngestRequest{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	doc := result.Document
	status := http.StatusCreated
	message := "Document uploaded and processed successfully"
	if result.Duplicate {
		status = http.StatusOK
		message = "Document was already uploaded; returning the existing document"
	}
	c.JSON(status, models.DocumentUploadResponse{
		DocID:      doc.ID,
		Filename:   doc.Filename,
		Status:     doc.Status,
		Message:    message,
		UploadTime: doc.UploadTime,
		ChunkCount: doc.ChunkCount,
	})
}

// List handles GET /documents?skip=0&limit=100.
func (h *DocumentHandler) List(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		RespondError(c, err)
		return
	}
	limit, err := queryInt(c, "limit", services.DefaultPageSize)
	if err != nil {
		RespondError(c, err)
		return
	}

	resp, err := h.documents.List(c.Request.Context(), skip, limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) RequestHistory(c *gin.Context) {
	resp, err := h.documents.RequestHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, resp)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %s must be an integer", apperr.ErrValidation, key)
	}
	return v, nil
}
