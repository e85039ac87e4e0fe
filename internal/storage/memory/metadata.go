package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/models"
)

// MetadataStore keeps document records and request logs in maps.
// Returned documents are copies; callers cannot mutate stored state.
type MetadataStore struct {
	mu        sync.RWMutex
	documents map[string]*models.Document
	requests  []models.RequestLog
}

func NewMetadataStore() *MetadataStore {
	return &MetadataStore{documents: make(map[string]*models.Document)}
}

func (s *MetadataStore) CreateDocument(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("%w: document %s already exists", apperr.ErrValidation, doc.ID)
	}
	s.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (s *MetadataStore) GetDocument(_ context.Context, docID string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, docID)
	}
	return cloneDocument(doc), nil
}

func (s *MetadataStore) FindByFileHash(_ context.Context, hash string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Document
	for _, doc := range s.documents {
		if doc.FileHash != hash {
			continue
		}
		if found == nil || doc.UploadTime.After(found.UploadTime) {
			found = doc
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no document with hash %s", apperr.ErrNotFound, hash)
	}
	return cloneDocument(found), nil
}

func (s *MetadataStore) ListDocuments(_ context.Context, offset, limit int) ([]models.Document, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		all = append(all, *cloneDocument(doc))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].UploadTime.Equal(all[j].UploadTime) {
			return all[i].ID < all[j].ID
		}
		return all[i].UploadTime.After(all[j].UploadTime)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []models.Document{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *MetadataStore) MarkProcessed(_ context.Context, docID string, stats models.ProcessingStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.transition(docID, models.StatusProcessed)
	if err != nil {
		return err
	}
	doc.TextLength = stats.TextLength
	doc.ChunkCount = stats.ChunkCount
	doc.PageCount = stats.PageCount
	if stats.SourceURI != "" {
		doc.SourceURI = stats.SourceURI
	}
	return nil
}

func (s *MetadataStore) MarkFailed(_ context.Context, docID, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.transition(docID, models.StatusFailed)
	if err != nil {
		return err
	}
	doc.ErrorDetails = details
	return nil
}

// transition must be called with the write lock held.
func (s *MetadataStore) transition(docID string, to models.Status) (*models.Document, error) {
	doc, ok := s.documents[docID]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, docID)
	}
	if !models.CanTransition(doc.Status, to) {
		return nil, fmt.Errorf("%w: document %s cannot move from %s to %s", apperr.ErrValidation, docID, doc.Status, to)
	}
	doc.Status = to
	return doc, nil
}

func (s *MetadataStore) SetSummary(_ context.Context, docID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[docID]
	if !ok {
		return fmt.Errorf("%w: document %s", apperr.ErrNotFound, docID)
	}
	if doc.HasSummary() {
		return nil
	}
	doc.Summary = &summary
	return nil
}

func (s *MetadataStore) DeleteDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return fmt.Errorf("%w: document %s", apperr.ErrNotFound, docID)
	}
	delete(s.documents, docID)

	kept := s.requests[:0]
	for _, entry := range s.requests {
		if entry.DocID != docID {
			kept = append(kept, entry)
		}
	}
	s.requests = kept
	return nil
}

func (s *MetadataStore) AppendRequestLog(_ context.Context, entry *models.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, *entry)
	return nil
}

// ListRequestLogs returns the entries of a document, newest first.
func (s *MetadataStore) ListRequestLogs(_ context.Context, docID string) ([]models.RequestLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := []models.RequestLog{}
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].DocID == docID {
			entries = append(entries, s.requests[i])
		}
	}
	return entries, nil
}

func cloneDocument(doc *models.Document) *models.Document {
	c := *doc
	if doc.Summary != nil {
		summary := *doc.Summary
		c.Summary = &summary
	}
	return &c
}
