package common

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Job statuses
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Storage locations for uploaded sources and parsed output, overridden from Config by serve
var (
	UploadsDir = "./uploads"
	OutputDir  = "./output"
)

// ParseJob tracks one delimited file being parsed in the background
type ParseJob struct {
	ID             string     `gorm:"primaryKey;type:text" json:"id"`
	IdempotencyKey string     `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	SourceName     string     `json:"source_name"`
	FilePath       string     `json:"file_path,omitempty"`
	OutputPath     string     `json:"output_path,omitempty"` // NDJSON, one record per line
	Delimiter      string     `gorm:"not null;default:','" json:"delimiter"`
	Status         string     `gorm:"not null" json:"status"` // pending, processing, completed, failed
	Header         string     `gorm:"type:text" json:"header,omitempty"` // JSON array of field names
	TotalRecords   int        `gorm:"default:0" json:"total_records"`
	AnomalyCount   int        `gorm:"default:0" json:"anomaly_count"`
	Errors         string     `gorm:"type:text" json:"errors,omitempty"` // JSON array of RecordValidationResult
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ApiMetric is one served request, linked to a parse job when it touched one
type ApiMetric struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RequestID     string    `gorm:"index" json:"request_id"`
	JobID         string    `gorm:"index" json:"job_id,omitempty"`
	Endpoint      string    `gorm:"not null" json:"endpoint"`
	Method        string    `gorm:"not null" json:"method"`
	StatusCode    int       `gorm:"not null" json:"status_code"`
	DurationMs    int       `gorm:"not null" json:"duration_ms"`
	RowsProcessed int       `gorm:"default:0" json:"rows_processed"`
	Errors        string    `gorm:"type:text" json:"errors,omitempty"` // JSON errors
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
}

func (ParseJob) TableName() string  { return "parse_jobs" }
func (ApiMetric) TableName() string { return "api_metrics" }

// HeaderFields decodes the stored header, nil when the job has none yet
func (j *ParseJob) HeaderFields() []string {
	if j.Header == "" {
		return nil
	}
	var fields []string
	if err := json.Unmarshal([]byte(j.Header), &fields); err != nil {
		return nil
	}
	return fields
}

// SetHeaderFields stores the header as JSON
func (j *ParseJob) SetHeaderFields(fields []string) {
	data, _ := json.Marshal(fields)
	j.Header = string(data)
}

// Anomalies decodes the stored per-line errors
func (j *ParseJob) Anomalies() []RecordValidationResult {
	if j.Errors == "" {
		return nil
	}
	var results []RecordValidationResult
	if err := json.Unmarshal([]byte(j.Errors), &results); err != nil {
		return nil
	}
	return results
}

// AutoMigrateJobs creates job tracking tables
func AutoMigrateJobs(db *gorm.DB) error {
	return db.AutoMigrate(&ParseJob{}, &ApiMetric{})
}
