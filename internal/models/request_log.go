package models

import "time"

// RequestType identifies which AI operation a request log entry records.
type RequestType string

const (
	RequestTypeSummarize RequestType = "summarize"
	RequestTypeQA        RequestType = "qa"
)

// RequestLog records one summarize or QA call. Entries are append-only.
type RequestLog struct {
	ID          string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DocID       string      `gorm:"not null;index;type:varchar(36)" json:"doc_id"`
	RequestType RequestType `gorm:"not null;index;type:varchar(16)" json:"request_type"`
	Timestamp   time.Time   `gorm:"not null;index" json:"timestamp"`
	LatencyMS   int64       `json:"latency_ms"`
}

func (RequestLog) TableName() string { return "requests" }
