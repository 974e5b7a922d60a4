package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusSucceeded AnalysisStatus = "succeeded"
	StatusRejected  AnalysisStatus = "rejected"
	StatusFailed    AnalysisStatus = "failed"
)

// AnalysisRecord is an audit row for one analyze request. It never carries
// resume text or scores.
type AnalysisRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RequestID        string         `gorm:"type:text;index" json:"request_id"`
	OriginalFileName string         `gorm:"type:text" json:"original_filename"`
	Status           AnalysisStatus `gorm:"type:text;not null" json:"status"`
	ErrorCode        string         `gorm:"type:text" json:"error_code,omitempty"`
	PageCount        int            `json:"page_count"`
	TextLength       int            `json:"text_length"`
	DurationMillis   int64          `json:"duration_ms"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}
