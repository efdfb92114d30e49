package common

import (
	"time"

	"gorm.io/gorm"
)

// Import mode constants. Online mode writes leads through the store;
// offline mode renders SQL artifacts instead of touching the database.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
)

// Job status constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ImportJob tracks one run of the lead import pipeline
type ImportJob struct {
	ID                string     `gorm:"primaryKey;type:text" json:"id"`
	IdempotencyKey    string     `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	OwnerID           string     `gorm:"not null;index" json:"owner_id"`
	Mode              string     `gorm:"not null" json:"mode"`   // online, offline
	Status            string     `gorm:"not null" json:"status"` // pending, processing, completed, failed
	FilePath          string     `json:"file_path,omitempty"`
	BatchSize         int        `gorm:"not null" json:"batch_size"`
	TotalRows         int        `gorm:"default:0" json:"total_rows"`
	Created           int        `gorm:"default:0" json:"created"`
	SkippedDuplicates int        `gorm:"default:0" json:"skipped_duplicates"`
	DefaultedFields   int        `gorm:"default:0" json:"defaulted_fields"`
	BatchesCommitted  int        `gorm:"default:0" json:"batches_committed"`
	ArtifactDir       string     `json:"artifact_dir,omitempty"`            // offline mode only
	Issues            string     `gorm:"type:text" json:"issues,omitempty"` // JSON array of row issues
	Error             string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// ExportJob tracks the status of lead export operations
type ExportJob struct {
	ID             string     `gorm:"primaryKey;type:text" json:"id"`
	IdempotencyKey string     `gorm:"uniqueIndex;not null" json:"idempotency_key"`
	OwnerID        string     `gorm:"not null;index" json:"owner_id"`
	Status         string     `gorm:"not null" json:"status"`
	FilePath       string     `json:"file_path,omitempty"`
	DownloadURL    string     `json:"download_url,omitempty"`
	TotalRecords   int        `gorm:"default:0" json:"total_records"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ApiMetric tracks API performance metrics
type ApiMetric struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Endpoint      string    `gorm:"not null" json:"endpoint"`
	Method        string    `gorm:"not null" json:"method"`
	StatusCode    int       `gorm:"not null" json:"status_code"`
	DurationMs    int       `gorm:"not null" json:"duration_ms"`
	RowsProcessed int       `gorm:"default:0" json:"rows_processed"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
}

func (ImportJob) TableName() string { return "import_jobs" }
func (ExportJob) TableName() string { return "export_jobs" }
func (ApiMetric) TableName() string { return "api_metrics" }

// AutoMigrateJobs creates job tracking tables
func AutoMigrateJobs(db *gorm.DB) {
	db.AutoMigrate(&ImportJob{}, &ExportJob{}, &ApiMetric{})
}
