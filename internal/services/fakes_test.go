package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/storage/memory"
)

type fakeGateway struct {
	mu             sync.Mutex
	available      bool
	summary        string
	answer         string
	err            error
	summarizeCalls int
	answerCalls    int
	lastContext    string
	lastQuestion   string
	lastMaxLength  int

	// started receives once per Summarize call; release, when set, holds the
	// call until it is closed or the call's context ends.
	started chan struct{}
	release chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{available: true, summary: "A short summary of the document.", answer: "The answer."}
}

func (g *fakeGateway) IsAvailable() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.available
}

func (g *fakeGateway) Summarize(ctx context.Context, _ string, maxLength int) (string, error) {
	g.mu.Lock()
	g.summarizeCalls++
	g.lastMaxLength = maxLength
	started, release := g.started, g.release
	g.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.summary, nil
}

func (g *fakeGateway) Answer(_ context.Context, question, contextText string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answerCalls++
	g.lastQuestion = question
	g.lastContext = contextText
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *fakeGateway) calls() (summarize, answer int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.summarizeCalls, g.answerCalls
}

type fakeArchive struct {
	mu      sync.Mutex
	err     error
	puts    map[string][]byte
	deletes []string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{puts: make(map[string][]byte)}
}

func (a *fakeArchive) Put(_ context.Context, docID, filename string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.puts[docID] = data
	return fmt.Sprintf("gs://uploads/%s/%s", docID, filename), nil
}

func (a *fakeArchive) Delete(_ context.Context, docID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	delete(a.puts, docID)
	a.deletes = append(a.deletes, docID)
	return nil
}

// flakyMetadata fails selected writes while delegating everything else.
type flakyMetadata struct {
	*memory.MetadataStore
	failSetSummary bool
	failRequestLog bool
}

func (m *flakyMetadata) SetSummary(ctx context.Context, docID, summary string) error {
	if m.failSetSummary {
		return fmt.Errorf("%w: connection reset", apperr.ErrStorageUnavailable)
	}
	return m.MetadataStore.SetSummary(ctx, docID, summary)
}

func (m *flakyMetadata) AppendRequestLog(ctx context.Context, entry *models.RequestLog) error {
	if m.failRequestLog {
		return fmt.Errorf("%w: connection reset", apperr.ErrStorageUnavailable)
	}
	return m.MetadataStore.AppendRequestLog(ctx, entry)
}

// countingContent counts text reads.
type countingContent struct {
	*memory.ContentStore
	mu        sync.Mutex
	textReads int
}

func (c *countingContent) GetText(ctx context.Context, docID string) (string, error) {
	c.mu.Lock()
	c.textReads++
	c.mu.Unlock()
	return c.ContentStore.GetText(ctx, docID)
}

// seedDocument stores a processed document with the given chunks.
func seedDocument(t *testing.T, metadata MetadataStore, content ContentStore, docID string, chunks []string, summary *string) {
	t.Helper()
	ctx := context.Background()
	text := ""
	for i, chunk := range chunks {
		if i > 0 {
			text += " "
		}
		text += chunk
	}

	require.NoError(t, metadata.CreateDocument(ctx, &models.Document{
		ID:         docID,
		Filename:   docID + ".txt",
		UploadTime: time.Now().UTC(),
		Status:     models.StatusUploaded,
		Summary:    summary,
	}))
	require.NoError(t, metadata.MarkProcessed(ctx, docID, models.ProcessingStats{TextLength: len(text), ChunkCount: len(chunks)}))
	if content != nil && len(chunks) > 0 {
		require.NoError(t, content.PutContent(ctx, docID, text, chunks))
	}
}
