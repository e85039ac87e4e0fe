// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/chunking"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/gcp"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/storage/metadb"
)

const ServiceName = "AI Document Summarizer & Q&A"

type Config struct {
	Port string

	// GCP
	ProjectID           string
	Region              string
	VertexModel         string
	FirestoreDatabase   string
	FirestoreCollection string
	UploadsBucket       string

	// Relational database. An empty DatabaseDriver means no database is configured.
	DatabaseDriver string
	DatabaseDSN    string

	// Uploads and text processing
	MaxUploadSize     int64
	AllowedExtensions []string
	ChunkSize         int
	ChunkOverlap      int

	CORSOrigins []string
	GinMode     string

	ConnectTimeout time.Duration
	StoreTimeout   time.Duration
	AITimeout      time.Duration
}

// Load reads .env if present, then the environment. Invalid values fail with apperr.ErrValidation.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                gcp.GetEnv("PORT", "8080"),
		ProjectID:           gcp.GetEnv("GCP_PROJECT_ID", ""),
		Region:              gcp.GetEnv("GCP_REGION", "us-central1"),
		VertexModel:         gcp.GetEnv("VERTEX_AI_MODEL", "gemini-pro"),
		FirestoreDatabase:   gcp.GetEnv("FIRESTORE_DATABASE", ""),
		FirestoreCollection: gcp.GetEnv("FIRESTORE_COLLECTION_DOCUMENTS", "documents"),
		UploadsBucket:       gcp.GetEnv("UPLOADS_BUCKET", ""),
		AllowedExtensions:   parseList(gcp.GetEnv("ALLOWED_EXTENSIONS", ".pdf,.txt")),
		CORSOrigins:         parseList(gcp.GetEnv("CORS_ORIGINS", "*")),
		GinMode:             gcp.GetEnv("GIN_MODE", "release"),
	}

	var err error
	if cfg.MaxUploadSize, err = envInt64("MAX_UPLOAD_SIZE", 10*1024*1024); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = envInt("CHUNK_SIZE", chunking.DefaultChunkSize); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = envInt("CHUNK_OVERLAP", chunking.DefaultOverlap); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout, err = envDuration("CONNECT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = envDuration("STORE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AITimeout, err = envDuration("AI_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}
	if cfg.DatabaseDriver, cfg.DatabaseDSN, err = databaseFromEnv(cfg.ConnectTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive, got %d", apperr.ErrValidation, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", apperr.ErrValidation, c.ChunkOverlap)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("%w: MAX_UPLOAD_SIZE must be positive", apperr.ErrValidation)
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("%w: ALLOWED_EXTENSIONS must not be empty", apperr.ErrValidation)
	}
	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: extension %q must start with a dot", apperr.ErrValidation, ext)
		}
	}
	return nil
}

// AIConfigured reports whether a GCP project is set; without one the service
// runs with AI disabled and in-memory content storage.
func (c *Config) AIConfigured() bool {
	return c.ProjectID != ""
}

// DatabaseConfigured reports whether a relational database is set.
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseDriver != ""
}

// databaseFromEnv resolves DATABASE_URL, falling back to the POSTGRES_* parts.
func databaseFromEnv(connectTimeout time.Duration) (driver, dsn string, err error) {
	raw := gcp.GetEnv("DATABASE_URL", "")
	if raw == "" {
		host := gcp.GetEnv("POSTGRES_HOST", "")
		password := gcp.GetEnv("POSTGRES_PASSWORD", "")
		if host == "" || password == "" {
			return "", "", nil
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(gcp.GetEnv("POSTGRES_USER", "postgres"), password),
			Host:   host + ":" + gcp.GetEnv("POSTGRES_PORT", "5432"),
			Path:   "/" + gcp.GetEnv("POSTGRES_DB", "docsummarizer"),
		}
		raw = u.String()
	}

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return metadb.DriverPostgres, withConnectTimeout(raw, connectTimeout), nil
	case strings.HasPrefix(raw, "sqlite://"):
		return metadb.DriverSQLite, strings.TrimPrefix(raw, "sqlite://"), nil
	case strings.HasPrefix(raw, "file:"):
		return metadb.DriverSQLite, raw, nil
	default:
		return "", "", fmt.Errorf("%w: DATABASE_URL must start with postgres://, postgresql://, sqlite:// or file:", apperr.ErrValidation)
	}
}

func withConnectTimeout(dsn string, timeout time.Duration) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	if q.Get("connect_timeout") == "" {
		seconds := int(timeout.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		q.Set("connect_timeout", strconv.Itoa(seconds))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// parseList accepts "a,b" as well as the JSON-style `["a","b"]`.
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	var items []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			items = append(items, strings.ToLower(item))
		}
	}
	return items
}

func envInt(key string, fallback int) (int, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", apperr.ErrValidation, key, raw)
	}
	return v, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", apperr.ErrValidation, key, raw)
	}
	return v, nil
}

// envDuration accepts Go durations ("30s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive duration, got %q", apperr.ErrValidation, key, raw)
	}
	return d, nil
}
