// Package contentdb stores document text and chunks in Firestore, one
// Firestore document per uploaded file.
package contentdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

// Record is the Firestore shape of a document's content.
type Record struct {
	Text       string    `firestore:"text"`
	Chunks     []string  `firestore:"chunks"`
	ChunkCount int       `firestore:"chunkCount"`
	UpdatedAt  time.Time `firestore:"updatedAt,serverTimestamp"`
}

// Store implements the content store on a Firestore collection.
type Store struct {
	client     *firestore.Client
	collection string
	timeout    time.Duration
}

func New(client *firestore.Client, collection string, timeout time.Duration) *Store {
	return &Store{client: client, collection: collection, timeout: timeout}
}

// PutContent writes text and chunks together in a single document write.
func (s *Store) PutContent(ctx context.Context, docID, text string, chunks []string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	record := Record{Text: text, Chunks: chunks, ChunkCount: len(chunks)}
	if _, err := s.client.Collection(s.collection).Doc(docID).Set(ctx, record); err != nil {
		return mapError("failed to store document content", err)
	}
	return nil
}

func (s *Store) GetText(ctx context.Context, docID string) (string, error) {
	record, err := s.get(ctx, docID)
	if err != nil {
		return "", err
	}
	return record.Text, nil
}

func (s *Store) GetChunks(ctx context.Context, docID string) ([]string, error) {
	record, err := s.get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(record.Chunks) == 0 {
		return nil, fmt.Errorf("%w: document chunks not found", apperr.ErrNotFound)
	}
	return record.Chunks, nil
}

// DeleteContent removes the content document. Deleting a missing document is not an error.
func (s *Store) DeleteContent(ctx context.Context, docID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.client.Collection(s.collection).Doc(docID).Delete(ctx); err != nil {
		return mapError("failed to delete document content", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, docID string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.client.Collection(s.collection).Doc(docID).Get(ctx)
	if err != nil {
		return nil, mapError("failed to read document content", err)
	}
	var record Record
	if err := snap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("%w: failed to decode content of %s: %v", apperr.ErrStorageUnavailable, docID, err)
	}
	return &record, nil
}

func mapError(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: document content not found", apperr.ErrNotFound)
	case codes.InvalidArgument:
		// Firestore rejects documents over 1 MiB.
		return fmt.Errorf("%w: %s: %v", apperr.ErrValidation, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: timed out", apperr.ErrStorageUnavailable, op)
	}
	return fmt.Errorf("%w: %s: %v", apperr.ErrStorageUnavailable, op, err)
}
