package metadb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	store, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newDoc(uploaded time.Time) *models.Document {
	return &models.Document{
		ID:         uuid.NewString(),
		Filename:   "report.txt",
		FileSize:   42,
		FileHash:   "abc123",
		UploadTime: uploaded.UTC(),
		Status:     models.StatusUploaded,
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
}

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	doc := newDoc(time.Now())
	require.NoError(t, store.CreateDocument(ctx, doc))

	got, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Filename, got.Filename)
	assert.Equal(t, models.StatusUploaded, got.Status)
	assert.Nil(t, got.Summary)

	_, err = store.GetDocument(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_Transitions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	processed := newDoc(time.Now())
	require.NoError(t, store.CreateDocument(ctx, processed))
	require.NoError(t, store.MarkProcessed(ctx, processed.ID, models.ProcessingStats{TextLength: 1200, ChunkCount: 2, PageCount: 1, SourceURI: "gs://uploads/x/report.txt"}))

	got, err := store.GetDocument(ctx, processed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessed, got.Status)
	assert.Equal(t, 1200, got.TextLength)
	assert.Equal(t, 2, got.ChunkCount)
	assert.Equal(t, 1, got.PageCount)
	assert.Equal(t, "gs://uploads/x/report.txt", got.SourceURI)

	assert.ErrorIs(t, store.MarkFailed(ctx, processed.ID, "late"), apperr.ErrValidation)
	assert.ErrorIs(t, store.MarkProcessed(ctx, processed.ID, models.ProcessingStats{TextLength: 1, ChunkCount: 1}), apperr.ErrValidation)

	failed := newDoc(time.Now())
	require.NoError(t, store.CreateDocument(ctx, failed))
	require.NoError(t, store.MarkFailed(ctx, failed.ID, "no text content found"))

	got, err = store.GetDocument(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "no text content found", got.ErrorDetails)

	assert.ErrorIs(t, store.MarkProcessed(ctx, uuid.NewString(), models.ProcessingStats{TextLength: 1, ChunkCount: 1}), apperr.ErrNotFound)
}

func TestStore_SummaryIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	doc := newDoc(time.Now())
	require.NoError(t, store.CreateDocument(ctx, doc))

	require.NoError(t, store.SetSummary(ctx, doc.ID, "first"))
	require.NoError(t, store.SetSummary(ctx, doc.ID, "second"))

	got, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.True(t, got.HasSummary())
	assert.Equal(t, "first", *got.Summary)

	assert.ErrorIs(t, store.SetSummary(ctx, uuid.NewString(), "x"), apperr.ErrNotFound)
}

func TestStore_ListDocuments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 4; i++ {
		doc := newDoc(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, store.CreateDocument(ctx, doc))
		ids = append(ids, doc.ID)
	}

	docs, total, err := store.ListDocuments(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, docs, 3)
	assert.Equal(t, ids[3], docs[0].ID)
	assert.Equal(t, ids[2], docs[1].ID)

	docs, _, err = store.ListDocuments(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, ids[0], docs[0].ID)
}

func TestStore_FindByFileHash(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := newDoc(base)
	newer := newDoc(base.Add(time.Minute))
	require.NoError(t, store.CreateDocument(ctx, older))
	require.NoError(t, store.CreateDocument(ctx, newer))

	got, err := store.FindByFileHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = store.FindByFileHash(ctx, "unknown")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_RequestLogsAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	doc := newDoc(time.Now())
	require.NoError(t, store.CreateDocument(ctx, doc))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendRequestLog(ctx, &models.RequestLog{
		ID: uuid.NewString(), DocID: doc.ID, RequestType: models.RequestTypeSummarize, Timestamp: base, LatencyMS: 900,
	}))
	require.NoError(t, store.AppendRequestLog(ctx, &models.RequestLog{
		ID: uuid.NewString(), DocID: doc.ID, RequestType: models.RequestTypeQA, Timestamp: base.Add(time.Minute), LatencyMS: 400,
	}))

	entries, err := store.ListRequestLogs(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.RequestTypeQA, entries[0].RequestType)
	assert.Equal(t, int64(400), entries[0].LatencyMS)
	assert.Equal(t, models.RequestTypeSummarize, entries[1].RequestType)

	require.NoError(t, store.DeleteDocument(ctx, doc.ID))
	_, err = store.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	entries, err = store.ListRequestLogs(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, store.DeleteDocument(ctx, doc.ID), apperr.ErrNotFound)
}
