package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/app"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/config"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

var (
	application *app.App
	once        sync.Once
	initErr     error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("IngestUpload", ingestUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// ingestUpload ingests a file dropped into the uploads bucket.
func ingestUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		application, initErr = app.New(context.Background(), cfg)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var object models.StorageObjectData
	if err := json.Unmarshal(e.Data(), &object); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	logCtx := slog.With("bucket", object.Bucket, "object", object.Name, "eventId", e.ID())

	result, err := application.IngestObject(ctx, object)
	if err != nil {
		// Retrying cannot fix a file that is invalid or gone.
		if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrNotFound) {
			logCtx.Warn("Skipping object that cannot be ingested", "error", err)
			return nil
		}
		logCtx.Error("Failed to ingest object", "error", err)
		return err
	}

	logCtx.Info("Object ingested.", "documentId", result.Document.ID, "duplicate", result.Duplicate, "chunkCount", result.Document.ChunkCount)
	return nil
}
