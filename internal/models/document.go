package models

import "time"

// Status is the processing state of an uploaded document.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// CanTransition reports whether a document may move from one status to another.
// Status only moves forward: uploaded becomes processed or failed, and both of
// those are terminal.
func CanTransition(from, to Status) bool {
	return from == StatusUploaded && (to == StatusProcessed || to == StatusFailed)
}

// Document is the metadata record for one uploaded file.
// Full text and chunks live in the content store, keyed by the same ID.
type Document struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Filename     string    `gorm:"not null;index" json:"filename"`
	FileSize     int64     `json:"file_size"`
	FileHash     string    `gorm:"index;type:varchar(64)" json:"file_hash,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	UploadTime   time.Time `gorm:"not null;index" json:"upload_time"`
	Status       Status    `gorm:"not null;index;type:varchar(16)" json:"status"`
	ErrorDetails string    `json:"error_details,omitempty"`
	SourceURI    string    `json:"source_uri,omitempty"`
	PageCount    int       `json:"page_count,omitempty"`
	TextLength   int       `json:"text_length"`
	ChunkCount   int       `json:"chunk_count"`
	Summary      *string   `gorm:"type:text" json:"summary"`
}

func (Document) TableName() string { return "documents" }

// HasSummary reports whether a summary has already been generated and stored.
func (d *Document) HasSummary() bool {
	return d.Summary != nil && *d.Summary != ""
}

// ProcessingStats are the fields recorded when a document finishes processing.
type ProcessingStats struct {
	TextLength int
	ChunkCount int
	PageCount  int
	// SourceURI is left unchanged when empty.
	SourceURI string
}
