package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

// DefaultSummaryLength is the summary word target when the caller gives none.
const DefaultSummaryLength = 500

type OrchestratorConfig struct {
	// PersistTimeout bounds writes that outlive the request context: the
	// summary cache write and the request log entry.
	PersistTimeout time.Duration
	// GenerationTimeout bounds a shared summary generation, which runs
	// detached from any single caller's context.
	GenerationTimeout time.Duration
}

// Orchestrator runs the summarize and question answering flows over stored documents.
type Orchestrator struct {
	metadata MetadataStore
	content  ContentStore
	gateway  Gateway
	config   OrchestratorConfig

	// summaries collapses concurrent first-time generations for one document.
	summaries singleflight.Group
}

func NewOrchestrator(metadata MetadataStore, content ContentStore, gateway Gateway, config OrchestratorConfig) *Orchestrator {
	if config.PersistTimeout <= 0 {
		config.PersistTimeout = 10 * time.Second
	}
	if config.GenerationTimeout <= 0 {
		config.GenerationTimeout = 3 * time.Minute
	}
	return &Orchestrator{
		metadata: metadata,
		content:  content,
		gateway:  gateway,
		config:   config,
	}
}

// AIAvailable reports whether the generative model can be called.
func (o *Orchestrator) AIAvailable() bool {
	return o.gateway != nil && o.gateway.IsAvailable()
}

// Summarize returns the cached summary of a document, generating and storing
// it on first use. maxLength is a target word count.
func (o *Orchestrator) Summarize(ctx context.Context, docID string, maxLength int) (*models.SummarizeResponse, error) {
	start := time.Now()
	if maxLength <= 0 {
		return nil, fmt.Errorf("%w: max_length must be a positive number of words", apperr.ErrValidation)
	}
	logCtx := slog.With("documentId", docID, "requestType", models.RequestTypeSummarize)

	doc, err := o.metadata.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.HasSummary() {
		logCtx.Info("Returning cached summary.")
		return newSummarizeResponse(docID, *doc.Summary), nil
	}

	// The flight is shared, so one caller leaving must not cancel it for the others.
	flight := o.summaries.DoChan(docID, func() (any, error) {
		genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.GenerationTimeout)
		defer cancel()
		return o.generateSummary(genCtx, logCtx, docID, maxLength, start)
	})

	select {
	case <-ctx.Done():
		logCtx.Info("Caller left before the summary was ready.", "error", ctx.Err())
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logCtx.Info("Joined an in-flight summary generation.")
		}
		return newSummarizeResponse(docID, res.Val.(string)), nil
	}
}

func (o *Orchestrator) generateSummary(ctx context.Context, logCtx *slog.Logger, docID string, maxLength int, start time.Time) (string, error) {
	// A generation that finished while this call waited has already filled the cache.
	doc, err := o.metadata.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	if doc.HasSummary() {
		return *doc.Summary, nil
	}

	text, err := o.content.GetText(ctx, docID)
	if err != nil {
		return "", err
	}
	if !o.AIAvailable() {
		return "", fmt.Errorf("%w: cannot summarize without a configured model", apperr.ErrServiceUnavailable)
	}

	logCtx.Info("Generating summary.", "textLength", len(text), "maxLength", maxLength)
	summary, err := o.gateway.Summarize(ctx, text, maxLength)
	if err != nil {
		logCtx.Error("Summary generation failed", "error", err)
		return "", asGenerationError(err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("%w: model returned an empty summary", apperr.ErrGenerationFailed)
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.PersistTimeout)
	defer cancel()
	if err := o.metadata.SetSummary(persistCtx, docID, summary); err != nil {
		logCtx.Error("Failed to store summary", "error", err)
		return "", fmt.Errorf("failed to store summary: %w", err)
	}

	// Another instance may have stored its summary first; the stored one wins.
	if stored, err := o.metadata.GetDocument(persistCtx, docID); err != nil {
		logCtx.Warn("Could not re-read stored summary", "error", err)
	} else if stored.HasSummary() {
		summary = *stored.Summary
	}

	o.logRequest(ctx, logCtx, docID, models.RequestTypeSummarize, start)
	return summary, nil
}

// Answer answers a question using the leading chunks of a document as context.
func (o *Orchestrator) Answer(ctx context.Context, docID, question string) (*models.QAResponse, error) {
	start := time.Now()
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", apperr.ErrValidation)
	}
	logCtx := slog.With("documentId", docID, "requestType", models.RequestTypeQA)

	if _, err := o.metadata.GetDocument(ctx, docID); err != nil {
		return nil, err
	}
	chunks, err := o.content.GetChunks(ctx, docID)
	if err != nil {
		return nil, err
	}

	contextText := BuildContext(chunks, MaxContextLength)
	if !o.AIAvailable() {
		return nil, fmt.Errorf("%w: cannot answer without a configured model", apperr.ErrServiceUnavailable)
	}

	logCtx.Info("Answering question.", "chunkCount", len(chunks), "contextLength", len([]rune(contextText)))
	answer, err := o.gateway.Answer(ctx, question, contextText)
	if err != nil {
		logCtx.Error("Answer generation failed", "error", err)
		return nil, asGenerationError(err)
	}

	o.logRequest(ctx, logCtx, docID, models.RequestTypeQA, start)
	return &models.QAResponse{
		DocID:    docID,
		Question: question,
		Answer:   strings.TrimSpace(answer),
		Sources:  leadingSources(chunks),
	}, nil
}

// logRequest appends a request log entry. Failures are logged and never
// reach the caller.
func (o *Orchestrator) logRequest(ctx context.Context, logCtx *slog.Logger, docID string, requestType models.RequestType, start time.Time) {
	entry := &models.RequestLog{
		ID:          uuid.NewString(),
		DocID:       docID,
		RequestType: requestType,
		Timestamp:   time.Now().UTC(),
		LatencyMS:   time.Since(start).Milliseconds(),
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.PersistTimeout)
	defer cancel()
	if err := o.metadata.AppendRequestLog(writeCtx, entry); err != nil {
		logCtx.Warn("Failed to write request log", "error", err)
		return
	}
	logCtx.Info("Request completed.", "latencyMs", entry.LatencyMS)
}

// asGenerationError keeps gateway errors that already carry a kind, passes a
// caller's cancellation through and marks anything else as a failed generation.
func asGenerationError(err error) error {
	if errors.Is(err, apperr.ErrServiceUnavailable) || errors.Is(err, apperr.ErrGenerationFailed) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", apperr.ErrGenerationFailed, err)
}

func newSummarizeResponse(docID, summary string) *models.SummarizeResponse {
	return &models.SummarizeResponse{
		DocID:     docID,
		Summary:   summary,
		WordCount: len(strings.Fields(summary)),
	}
}
