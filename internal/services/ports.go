package services

import (
	"context"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

// ContentStore keeps the full text and the chunk sequence of each document.
// Text and chunks are written together in one write and never modified.
type ContentStore interface {
	PutContent(ctx context.Context, docID, text string, chunks []string) error
	GetText(ctx context.Context, docID string) (string, error)
	GetChunks(ctx context.Context, docID string) ([]string, error)
	DeleteContent(ctx context.Context, docID string) error
}

// MetadataStore keeps document records and the request log.
// Implementations return apperr.ErrNotFound for unknown IDs and
// apperr.ErrStorageUnavailable for backend failures.
type MetadataStore interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, docID string) (*models.Document, error)
	// FindByFileHash returns the newest document with the given hash, or apperr.ErrNotFound.
	FindByFileHash(ctx context.Context, hash string) (*models.Document, error)
	// ListDocuments returns a page of documents, newest first, and the total count.
	ListDocuments(ctx context.Context, offset, limit int) ([]models.Document, int64, error)
	MarkProcessed(ctx context.Context, docID string, stats models.ProcessingStats) error
	MarkFailed(ctx context.Context, docID, details string) error
	// SetSummary stores the summary only if none is stored yet.
	SetSummary(ctx context.Context, docID, summary string) error
	DeleteDocument(ctx context.Context, docID string) error
	AppendRequestLog(ctx context.Context, entry *models.RequestLog) error
	ListRequestLogs(ctx context.Context, docID string) ([]models.RequestLog, error)
}

// Gateway is the generative model used for summaries and answers.
type Gateway interface {
	IsAvailable() bool
	Summarize(ctx context.Context, text string, maxLength int) (string, error)
	Answer(ctx context.Context, question, contextText string) (string, error)
}

// Archive keeps the raw bytes of uploaded files.
type Archive interface {
	Put(ctx context.Context, docID, filename string, data []byte) (string, error)
	Delete(ctx context.Context, docID string) error
}
