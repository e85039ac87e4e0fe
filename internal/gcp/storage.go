package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not an error: uploads are keyed by document ID, so a
// second write carries the same bytes.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName string, content []byte) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Object already exists, skipping write.", "gcsObject", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// ReadObject downloads an object, refusing anything larger than maxBytes.
func ReadObject(ctx context.Context, client *storage.Client, bucket, object string, maxBytes int64) ([]byte, error) {
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: object gs://%s/%s", apperr.ErrNotFound, bucket, object)
		}
		return nil, fmt.Errorf("%w: failed to get GCS object reader for gs://%s/%s: %v", apperr.ErrStorageUnavailable, bucket, object, err)
	}
	defer reader.Close()

	if reader.Attrs.Size > maxBytes {
		return nil, fmt.Errorf("%w: object gs://%s/%s is %d bytes, limit is %d", apperr.ErrValidation, bucket, object, reader.Attrs.Size, maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read gs://%s/%s: %v", apperr.ErrStorageUnavailable, bucket, object, err)
	}
	return data, nil
}

// UploadArchive keeps the raw bytes of every ingested file in a GCS bucket,
// one prefix per document.
type UploadArchive struct {
	bucket     *storage.BucketHandle
	bucketName string
	timeout    time.Duration
}

// NewUploadArchive creates an archive writing to bucketName.
func NewUploadArchive(client *storage.Client, bucketName string, timeout time.Duration) *UploadArchive {
	return &UploadArchive{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		timeout:    timeout,
	}
}

// Put stores data under <docID>/<sanitized filename> and returns its gs:// URI.
func (a *UploadArchive) Put(ctx context.Context, docID, filename string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	objectName := ObjectName(docID, filename)
	if err := SaveToGCSAtomically(ctx, a.bucket, objectName, data); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrStorageUnavailable, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.bucketName, objectName), nil
}

// Delete removes every archived object of a document.
func (a *UploadArchive) Delete(ctx context.Context, docID string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	it := a.bucket.Objects(ctx, &storage.Query{Prefix: docID + "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: failed to list archived objects: %v", apperr.ErrStorageUnavailable, err)
		}
		if err := a.bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: failed to delete %s: %v", apperr.ErrStorageUnavailable, attrs.Name, err)
		}
	}
	return nil
}

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// ObjectName builds the archive object name for an uploaded file. The base name
// is lower-cased and reduced to [a-z0-9_]; the extension is kept.
func ObjectName(docID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	base = strings.Trim(nonAlphanumericRegex.ReplaceAllString(base, "_"), "_")

	const maxLength = 100
	if len(base) > maxLength {
		base = strings.Trim(base[:maxLength], "_")
	}
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s/%s%s", docID, base, ext)
}
