// Package app wires configuration, clients, stores and services into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/config"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/extract"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/gcp"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/httpapi"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/services"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/storage/contentdb"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/storage/memory"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/storage/metadb"
)

type App struct {
	Config       *config.Config
	Router       *gin.Engine
	Ingestor     *services.Ingestor
	Orchestrator *services.Orchestrator
	Documents    *services.DocumentService

	storageClient *storage.Client
	closers       []func() error
}

// New builds the service. Missing or unreachable backends degrade instead of
// failing startup: without a GCP project the AI gateway is disabled and content
// is kept in memory; without a database metadata is kept in memory.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	gin.SetMode(cfg.GinMode)

	gateway := a.newGateway(ctx)
	content := a.newContentStore(ctx)
	metadata := a.newMetadataStore(ctx)
	archive := a.newArchive(ctx)

	extractor := extract.New(cfg.MaxUploadSize, cfg.AllowedExtensions)
	a.Ingestor = services.NewIngestor(extractor, metadata, content, archive, services.IngestConfig{
		ChunkSize:     cfg.ChunkSize,
		ChunkOverlap:  cfg.ChunkOverlap,
		StatusTimeout: cfg.StoreTimeout,
	})
	a.Orchestrator = services.NewOrchestrator(metadata, content, gateway, services.OrchestratorConfig{
		PersistTimeout:    cfg.StoreTimeout,
		GenerationTimeout: cfg.AITimeout + cfg.StoreTimeout,
	})
	a.Documents = services.NewDocumentService(metadata, content, archive)

	a.Router = httpapi.NewRouter(httpapi.RouterConfig{
		DocumentHandler: httpapi.NewDocumentHandler(a.Ingestor, a.Documents, cfg.MaxUploadSize),
		AIHandler:       httpapi.NewAIHandler(a.Orchestrator),
		HealthHandler:   httpapi.NewHealthHandler(config.ServiceName, a.Orchestrator.AIAvailable),
		CORSOrigins:     cfg.CORSOrigins,
		MaxUploadSize:   cfg.MaxUploadSize,
	})

	slog.Info("Service initialized.",
		"aiAvailable", a.Orchestrator.AIAvailable(),
		"persistentContent", cfg.AIConfigured(),
		"database", cfg.DatabaseDriver,
		"archiveBucket", cfg.UploadsBucket,
	)
	return a, nil
}

func (a *App) newGateway(ctx context.Context) services.Gateway {
	if !a.Config.AIConfigured() {
		slog.Warn("GCP_PROJECT_ID not set, AI features are disabled.")
		return &gcp.VertexGateway{}
	}

	connectCtx, cancel := context.WithTimeout(ctx, a.Config.ConnectTimeout)
	defer cancel()
	gateway, err := gcp.NewVertexGateway(connectCtx, gcp.VertexConfig{
		ProjectID: a.Config.ProjectID,
		Region:    a.Config.Region,
		Model:     a.Config.VertexModel,
		Timeout:   a.Config.AITimeout,
	})
	if err != nil {
		slog.Warn("Vertex AI initialization failed, AI features are disabled.", "error", err)
		return &gcp.VertexGateway{}
	}
	a.closers = append(a.closers, gateway.Close)
	return gateway
}

func (a *App) newContentStore(ctx context.Context) services.ContentStore {
	if !a.Config.AIConfigured() {
		slog.Warn("GCP_PROJECT_ID not set, document content is kept in memory.")
		return memory.NewContentStore()
	}

	connectCtx, cancel := context.WithTimeout(ctx, a.Config.ConnectTimeout)
	defer cancel()
	client, err := gcp.NewFirestoreClient(connectCtx, a.Config.ProjectID, a.Config.FirestoreDatabase)
	if err != nil {
		slog.Warn("Firestore initialization failed, document content is kept in memory.", "error", err)
		return memory.NewContentStore()
	}
	a.closers = append(a.closers, client.Close)
	return contentdb.New(client, a.Config.FirestoreCollection, a.Config.StoreTimeout)
}

func (a *App) newMetadataStore(ctx context.Context) services.MetadataStore {
	if !a.Config.DatabaseConfigured() {
		slog.Warn("No database configured, document metadata is kept in memory.")
		return memory.NewMetadataStore()
	}

	store, err := metadb.Open(ctx, metadb.Config{
		Driver:         a.Config.DatabaseDriver,
		DSN:            a.Config.DatabaseDSN,
		ConnectTimeout: a.Config.ConnectTimeout,
		QueryTimeout:   a.Config.StoreTimeout,
	})
	if err != nil {
		slog.Warn("Database initialization failed, document metadata is kept in memory.", "error", err)
		return memory.NewMetadataStore()
	}
	a.closers = append(a.closers, store.Close)
	return store
}

// newArchive returns nil when no uploads bucket is configured.
func (a *App) newArchive(ctx context.Context) services.Archive {
	if !a.Config.AIConfigured() {
		return nil
	}
	client, err := gcp.NewStorageClient(ctx)
	if err != nil {
		slog.Warn("Cloud Storage initialization failed, uploads are not archived.", "error", err)
		return nil
	}
	a.storageClient = client
	a.closers = append(a.closers, client.Close)

	if a.Config.UploadsBucket == "" {
		return nil
	}
	return gcp.NewUploadArchive(client, a.Config.UploadsBucket, a.Config.StoreTimeout)
}

// IngestObject downloads a finalized Cloud Storage object and ingests it.
func (a *App) IngestObject(ctx context.Context, object models.StorageObjectData) (*services.IngestResult, error) {
	if a.storageClient == nil {
		return nil, fmt.Errorf("%w: Cloud Storage client is not configured", apperr.ErrStorageUnavailable)
	}
	data, err := gcp.ReadObject(ctx, a.storageClient, object.Bucket, object.Name, a.Config.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	return a.Ingestor.Ingest(ctx, &services.IngestRequest{
		Filename:  object.Name,
		Data:      data,
		SourceURI: fmt.Sprintf("gs://%s/%s", object.Bucket, object.Name),
	})
}

// Close releases every client in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
