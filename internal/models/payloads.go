package models

import "time"

// These structs define the JSON payloads exchanged with API clients.

// DocumentUploadResponse is returned after a file has been ingested.
type DocumentUploadResponse struct {
	DocID      string    `json:"doc_id"`
	Filename   string    `json:"filename"`
	Status     Status    `json:"status"`
	Message    string    `json:"message"`
	UploadTime time.Time `json:"upload_time"`
	ChunkCount int       `json:"chunk_count"`
}

// DocumentListResponse is one page of documents plus the total count.
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
	Total     int64      `json:"total"`
}

// SummarizeResponse is the output of the summarize operation.
type SummarizeResponse struct {
	DocID     string `json:"doc_id"`
	Summary   string `json:"summary"`
	WordCount int    `json:"word_count"`
}

// QARequest is the body of a question-answering call.
type QARequest struct {
	DocID    string `json:"doc_id"`
	Question string `json:"question"`
}

// QAResponse is the output of the question-answering operation.
// Sources are the first chunks of the document, not a citation of what the
// model actually used.
type QAResponse struct {
	DocID    string   `json:"doc_id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

// RequestLogListResponse lists the request history of a document.
type RequestLogListResponse struct {
	DocID    string       `json:"doc_id"`
	Requests []RequestLog `json:"requests"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Service     string    `json:"service"`
	Timestamp   time.Time `json:"timestamp"`
	AIAvailable bool      `json:"ai_available"`
}

// StorageObjectData is the payload of a GCS object-finalized CloudEvent.
type StorageObjectData struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        string `json:"size"`
}
