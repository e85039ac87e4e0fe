// Package memory holds process-local stores used when no persistent backend is
// configured, and in tests. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

type contentRecord struct {
	text   string
	chunks []string
}

// ContentStore keeps document text and chunks in a map.
type ContentStore struct {
	mu      sync.RWMutex
	records map[string]contentRecord
}

func NewContentStore() *ContentStore {
	return &ContentStore{records: make(map[string]contentRecord)}
}

func (s *ContentStore) PutContent(_ context.Context, docID, text string, chunks []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[docID] = contentRecord{text: text, chunks: append([]string(nil), chunks...)}
	return nil
}

func (s *ContentStore) GetText(_ context.Context, docID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[docID]
	if !ok {
		return "", fmt.Errorf("%w: document content not found", apperr.ErrNotFound)
	}
	return rec.text, nil
}

func (s *ContentStore) GetChunks(_ context.Context, docID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[docID]
	if !ok || len(rec.chunks) == 0 {
		return nil, fmt.Errorf("%w: document chunks not found", apperr.ErrNotFound)
	}
	return append([]string(nil), rec.chunks...), nil
}

func (s *ContentStore) DeleteContent(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, docID)
	return nil
}
