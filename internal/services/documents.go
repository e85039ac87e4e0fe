package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// DocumentService answers metadata queries and deletes documents.
type DocumentService struct {
	metadata MetadataStore
	content  ContentStore
	archive  Archive
}

// NewDocumentService creates the service. archive may be nil.
func NewDocumentService(metadata MetadataStore, content ContentStore, archive Archive) *DocumentService {
	return &DocumentService{metadata: metadata, content: content, archive: archive}
}

func (s *DocumentService) Get(ctx context.Context, docID string) (*models.Document, error) {
	return s.metadata.GetDocument(ctx, docID)
}

// List returns documents newest first.
func (s *DocumentService) List(ctx context.Context, offset, limit int) (*models.DocumentListResponse, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative", apperr.ErrValidation)
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", apperr.ErrValidation, MaxPageSize)
	}

	docs, total, err := s.metadata.ListDocuments(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &models.DocumentListResponse{Documents: docs, Total: total}, nil
}

// Delete removes content and the archived file first, then the metadata
// record, so a partial failure can be retried.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	logCtx := slog.With("documentId", docID)

	if _, err := s.metadata.GetDocument(ctx, docID); err != nil {
		return err
	}
	if err := s.content.DeleteContent(ctx, docID); err != nil {
		logCtx.Error("Failed to delete document content", "error", err)
		return fmt.Errorf("failed to delete document content: %w", err)
	}
	if s.archive != nil {
		if err := s.archive.Delete(ctx, docID); err != nil {
			logCtx.Error("Failed to delete archived upload", "error", err)
			return fmt.Errorf("failed to delete archived upload: %w", err)
		}
	}
	if err := s.metadata.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	logCtx.Info("Document deleted.")
	return nil
}

// RequestHistory returns the request log of a document, newest first.
func (s *DocumentService) RequestHistory(ctx context.Context, docID string) (*models.RequestLogListResponse, error) {
	if _, err := s.metadata.GetDocument(ctx, docID); err != nil {
		return nil, err
	}
	entries, err := s.metadata.ListRequestLogs(ctx, docID)
	if err != nil {
		return nil, err
	}
	return &models.RequestLogListResponse{DocID: docID, Requests: entries}, nil
}
