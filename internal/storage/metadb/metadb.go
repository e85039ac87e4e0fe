// Package metadb stores document metadata and the request log in a relational
// database through gorm. Postgres is used in deployments, SQLite locally and in tests.
package metadb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string
	DSN    string
	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
	// QueryTimeout bounds every store operation.
	QueryTimeout time.Duration
}

// Store implements the metadata store on gorm.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// Open connects, verifies the connection and migrates the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormLog := gormLogger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Driver, err)
	}

	if err := db.WithContext(pingCtx).AutoMigrate(&models.Document{}, &models.RequestLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &Store{db: db, timeout: queryTimeout}, nil
}

func (s *Store) DB() *gorm.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return mapError("create document", err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc models.Document
	if err := s.db.WithContext(ctx).Where("id = ?", docID).First(&doc).Error; err != nil {
		return nil, mapError("document "+docID, err)
	}
	return &doc, nil
}

func (s *Store) FindByFileHash(ctx context.Context, hash string) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc models.Document
	err := s.db.WithContext(ctx).
		Where("file_hash = ?", hash).
		Order("upload_time DESC").
		First(&doc).Error
	if err != nil {
		return nil, mapError("find document by hash", err)
	}
	return &doc, nil
}

func (s *Store) ListDocuments(ctx context.Context, offset, limit int) ([]models.Document, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Document{}).Count(&total).Error; err != nil {
		return nil, 0, mapError("count documents", err)
	}

	docs := []models.Document{}
	err := s.db.WithContext(ctx).
		Order("upload_time DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, mapError("list documents", err)
	}
	return docs, total, nil
}

func (s *Store) MarkProcessed(ctx context.Context, docID string, stats models.ProcessingStats) error {
	updates := map[string]any{
		"text_length": stats.TextLength,
		"chunk_count": stats.ChunkCount,
		"page_count":  stats.PageCount,
	}
	if stats.SourceURI != "" {
		updates["source_uri"] = stats.SourceURI
	}
	return s.transition(ctx, docID, models.StatusProcessed, updates)
}

func (s *Store) MarkFailed(ctx context.Context, docID, details string) error {
	return s.transition(ctx, docID, models.StatusFailed, map[string]any{
		"error_details": details,
	})
}

// transition applies updates only while the document is still uploaded, so a
// terminal status can never be overwritten.
func (s *Store) transition(ctx context.Context, docID string, to models.Status, updates map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updates["status"] = to
	result := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ? AND status = ?", docID, models.StatusUploaded).
		Updates(updates)
	if result.Error != nil {
		return mapError("update document status", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	doc, err := s.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: document %s cannot move from %s to %s", apperr.ErrValidation, docID, doc.Status, to)
}

// SetSummary stores summary unless one is already present.
func (s *Store) SetSummary(ctx context.Context, docID, summary string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := s.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ? AND (summary IS NULL OR summary = '')", docID).
		Update("summary", summary)
	if result.Error != nil {
		return mapError("store summary", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	_, err := s.GetDocument(ctx, docID)
	return err
}

// DeleteDocument removes the document and its request log in one transaction.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", docID).Delete(&models.Document{})
		if result.Error != nil {
			return mapError("delete document", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: document %s", apperr.ErrNotFound, docID)
		}
		if err := tx.Where("doc_id = ?", docID).Delete(&models.RequestLog{}).Error; err != nil {
			return mapError("delete request log", err)
		}
		return nil
	})
}

func (s *Store) AppendRequestLog(ctx context.Context, entry *models.RequestLog) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return mapError("append request log", err)
	}
	return nil
}

// ListRequestLogs returns the entries of a document, newest first.
func (s *Store) ListRequestLogs(ctx context.Context, docID string) ([]models.RequestLog, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries := []models.RequestLog{}
	err := s.db.WithContext(ctx).
		Where("doc_id = ?", docID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, mapError("list request log", err)
	}
	return entries, nil
}

func mapError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", apperr.ErrStorageUnavailable, op, err)
}
