package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/chunking"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/extract"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
	// StatusTimeout bounds the failure-status write, which runs even after the
	// request context is cancelled.
	StatusTimeout time.Duration
}

// IngestRequest is one file to ingest.
type IngestRequest struct {
	Filename string
	Data     []byte
	// SourceURI is set when the file already lives in object storage; the
	// archive is skipped in that case.
	SourceURI string
}

// IngestResult is the outcome of a successful ingestion.
type IngestResult struct {
	Document *models.Document
	// Duplicate is true when identical bytes had already been processed and
	// the existing document was returned instead.
	Duplicate bool
}

// Ingestor turns uploaded files into processed documents: it extracts text,
// chunks it and stores content and metadata.
type Ingestor struct {
	extractor *extract.Extractor
	metadata  MetadataStore
	content   ContentStore
	archive   Archive
	config    IngestConfig
}

// NewIngestor creates an ingestor. archive may be nil.
func NewIngestor(extractor *extract.Extractor, metadata MetadataStore, content ContentStore, archive Archive, config IngestConfig) *Ingestor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = chunking.DefaultChunkSize
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = 0
	}
	if config.StatusTimeout <= 0 {
		config.StatusTimeout = 10 * time.Second
	}
	return &Ingestor{
		extractor: extractor,
		metadata:  metadata,
		content:   content,
		archive:   archive,
		config:    config,
	}
}

// Ingest validates, extracts, chunks and stores a file.
func (f *Ingestor) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	if err := f.extractor.Validate(req.Filename, req.Data); err != nil {
		return nil, err
	}

	fileHash := hashBytes(req.Data)
	logCtx := slog.With("filename", req.Filename, "fileHash", fileHash)
	logCtx.Info("Starting ingestion.", "sizeBytes", len(req.Data))

	existing, err := f.findDuplicate(ctx, fileHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logCtx.Info("Duplicate file detected, returning existing document.", "documentId", existing.ID)
		return &IngestResult{Document: existing, Duplicate: true}, nil
	}

	doc := &models.Document{
		ID:         uuid.NewString(),
		Filename:   req.Filename,
		FileSize:   int64(len(req.Data)),
		FileHash:   fileHash,
		UploadTime: time.Now().UTC(),
		Status:     models.StatusUploaded,
		SourceURI:  req.SourceURI,
	}
	if err := f.metadata.CreateDocument(ctx, doc); err != nil {
		logCtx.Error("Failed to create document record", "error", err)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	logCtx = logCtx.With("documentId", doc.ID)
	logCtx.Info("Created document record.")

	result, err := f.extractor.Extract(req.Filename, req.Data)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to extract text", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		err := fmt.Errorf("%w: no text content found in file", apperr.ErrValidation)
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to extract text", err)
	}
	doc.ContentType = result.ContentType

	chunks := chunking.Chunk(result.Text, f.config.ChunkSize, f.config.ChunkOverlap)
	logCtx.Info("Text extracted and chunked.", "textLength", utf8.RuneCountInString(result.Text), "chunkCount", len(chunks), "pageCount", result.PageCount)

	sourceURI, err := f.storeContent(ctx, doc, result.Text, chunks, req)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to store document content", err)
	}

	stats := models.ProcessingStats{
		TextLength: utf8.RuneCountInString(result.Text),
		ChunkCount: len(chunks),
		PageCount:  result.PageCount,
		SourceURI:  sourceURI,
	}
	if err := f.metadata.MarkProcessed(ctx, doc.ID, stats); err != nil {
		return nil, f.handleError(ctx, logCtx, doc.ID, "failed to mark document processed", err)
	}

	doc.Status = models.StatusProcessed
	doc.TextLength = stats.TextLength
	doc.ChunkCount = stats.ChunkCount
	doc.PageCount = stats.PageCount
	if sourceURI != "" {
		doc.SourceURI = sourceURI
	}
	logCtx.Info("Ingestion complete.")
	return &IngestResult{Document: doc}, nil
}

// storeContent writes the content record and archives the raw file concurrently.
// It returns the archive URI, or "" when nothing was archived.
func (f *Ingestor) storeContent(ctx context.Context, doc *models.Document, text string, chunks []string, req *IngestRequest) (string, error) {
	var sourceURI string
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return f.content.PutContent(gCtx, doc.ID, text, chunks)
	})
	if f.archive != nil && req.SourceURI == "" {
		g.Go(func() error {
			uri, err := f.archive.Put(gCtx, doc.ID, req.Filename, req.Data)
			if err != nil {
				return fmt.Errorf("failed to archive upload: %w", err)
			}
			sourceURI = uri
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	return sourceURI, nil
}

// findDuplicate returns an already processed document with the same bytes, if any.
// Earlier attempts that failed do not count, so a failed file can be retried.
func (f *Ingestor) findDuplicate(ctx context.Context, fileHash string) (*models.Document, error) {
	doc, err := f.metadata.FindByFileHash(ctx, fileHash)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if doc.Status != models.StatusProcessed {
		return nil, nil
	}
	return doc, nil
}

func (f *Ingestor) handleError(ctx context.Context, logCtx *slog.Logger, docID, message string, originalErr error) error {
	fullError := fmt.Errorf("%s: %w", message, originalErr)
	logCtx.Error(message, "error", originalErr)

	statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.config.StatusTimeout)
	defer cancel()
	if err := f.metadata.MarkFailed(statusCtx, docID, fullError.Error()); err != nil {
		logCtx.Error("CRITICAL: Failed to update document status to failed after a processing error.", "updateError", err)
	}
	return fullError
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
