package exports

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lead-import-export/common"
	"lead-import-export/leads"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	// BatchSize is the number of records fetched in a single query
	BatchSize = 2000
)

// csvHeader is the column order of exported lead CSVs
var csvHeader = []string{
	"id", "owner_id", "contact_date", "name", "contact_handle", "source",
	"budget_sent", "outcome", "contact_quality", "closed_value", "note", "created_at",
}

// Handler serves the export endpoints. The database handle and config are
// injected at construction.
type Handler struct {
	DB  *gorm.DB
	Cfg common.Config
}

// NewHandler wires the export endpoints to a database and config
func NewHandler(db *gorm.DB, cfg common.Config) *Handler {
	return &Handler{DB: db, Cfg: cfg}
}

// RegisterRoutes mounts the export endpoints on a router group
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/exports", h.StreamExport)
	r.POST("/exports", h.CreateExport)
	r.GET("/exports/:job_id", h.GetExport)
}

// StreamExport godoc
// @Summary Stream an owner's leads (synchronous)
// @Description Streams all leads of one owner directly in CSV format
// @Tags exports
// @Produce text/csv
// @Param owner_id query string true "Owning account id"
// @Success 200 {file} file "Streaming export data"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /exports [get]
func (h *Handler) StreamExport(c *gin.Context) {
	ownerID := common.ResolveOwnerID(c, c.Query("owner_id"))
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id parameter is required"})
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("leads_%s.csv", timestamp)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Transfer-Encoding", "chunked")

	c.Stream(func(w io.Writer) bool {
		total, _ := h.writeLeadsCSV(w, ownerID)
		c.Set("rows_processed", total)
		return false // Done streaming
	})
}

// writeLeadsCSV writes an owner's leads to w in CSV form, batched by offset
func (h *Handler) writeLeadsCSV(w io.Writer, ownerID string) (int, error) {
	csvWriter := csv.NewWriter(w)
	csvWriter.Write(csvHeader)
	csvWriter.Flush()

	offset := 0
	total := 0
	for {
		var batch []leads.LeadModel
		result := h.DB.Where("owner_id = ?", ownerID).
			Order("created_at, id").
			Limit(BatchSize).Offset(offset).
			Find(&batch)
		if result.Error != nil {
			return total, result.Error
		}
		if len(batch) == 0 {
			break
		}

		for _, lead := range batch {
			csvWriter.Write([]string{
				lead.ID,
				lead.OwnerID,
				deref(lead.ContactDate),
				lead.Name,
				deref(lead.ContactHandle),
				lead.Source,
				strconv.FormatBool(lead.BudgetSent),
				lead.Outcome,
				deref(lead.ContactQuality),
				formatValue(lead.ClosedValue),
				deref(lead.Note),
				lead.CreatedAt.Format(time.RFC3339),
			})
		}
		csvWriter.Flush()

		total += len(batch)
		if len(batch) < BatchSize {
			break
		}
		offset += BatchSize
	}

	return total, csvWriter.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// CreateExportRequest represents the request for async export
type CreateExportRequest struct {
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
	OwnerID        string `json:"owner_id"`
}

// CreateExportResponse represents the response for async export creation
type CreateExportResponse struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateExport godoc
// @Summary Create async export job
// @Description Creates an export job that writes an owner's leads to a downloadable CSV file
// @Tags exports
// @Accept json
// @Produce json
// @Param export body CreateExportRequest true "Export configuration"
// @Success 202 {object} CreateExportResponse "Export job created"
// @Success 200 {object} CreateExportResponse "Existing job returned (idempotency)"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /exports [post]
func (h *Handler) CreateExport(c *gin.Context) {
	var req CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := common.ResolveOwnerID(c, req.OwnerID)
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return
	}

	// Check idempotency
	var existingJob common.ExportJob
	if err := h.DB.Where("idempotency_key = ?", req.IdempotencyKey).First(&existingJob).Error; err == nil {
		c.JSON(http.StatusOK, CreateExportResponse{
			JobID:     existingJob.ID,
			Status:    existingJob.Status,
			CreatedAt: existingJob.CreatedAt,
		})
		return
	}

	job := common.ExportJob{
		ID:             uuid.New().String(),
		IdempotencyKey: req.IdempotencyKey,
		OwnerID:        ownerID,
		Status:         common.JobStatusPending,
		CreatedAt:      time.Now(),
	}

	if err := h.DB.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create export job"})
		return
	}

	// Start async export processing
	go h.ProcessExportJob(job.ID)

	c.JSON(http.StatusAccepted, CreateExportResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
	})
}

// GetExport godoc
// @Summary Get export job status
// @Description Retrieves the status and download URL of an export job
// @Tags exports
// @Produce json
// @Param job_id path string true "Export Job ID"
// @Success 200 {object} map[string]interface{} "Export job details with download URL"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /exports/{job_id} [get]
func (h *Handler) GetExport(c *gin.Context) {
	jobID := c.Param("job_id")

	var job common.ExportJob
	if err := h.DB.Where("id = ?", jobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Export job not found"})
		return
	}

	// Set rows processed for metrics
	c.Set("rows_processed", job.TotalRecords)

	response := gin.H{
		"job_id":        job.ID,
		"owner_id":      job.OwnerID,
		"status":        job.Status,
		"total_records": job.TotalRecords,
		"created_at":    job.CreatedAt,
	}

	if job.CompletedAt != nil {
		response["completed_at"] = job.CompletedAt
	}
	if job.DownloadURL != "" {
		response["download_url"] = job.DownloadURL
	}

	c.JSON(http.StatusOK, response)
}

// ProcessExportJob processes an export job in the background
func (h *Handler) ProcessExportJob(jobID string) {
	var job common.ExportJob
	if err := h.DB.Where("id = ?", jobID).First(&job).Error; err != nil {
		return
	}

	job.Status = common.JobStatusProcessing
	h.DB.Save(&job)

	os.MkdirAll(h.Cfg.ExportsDir, 0750)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s_%s.csv", slug.Make("leads "+job.OwnerID), job.ID[:8], timestamp)
	path := filepath.Join(h.Cfg.ExportsDir, filename)

	file, err := os.Create(path)
	if err != nil {
		h.failExport(&job)
		return
	}
	defer file.Close()

	total, err := h.writeLeadsCSV(file, job.OwnerID)
	job.TotalRecords = total
	if err != nil {
		h.failExport(&job)
		return
	}

	job.Status = common.JobStatusCompleted
	job.FilePath = path
	job.DownloadURL = fmt.Sprintf("/downloads/%s", filename)

	now := time.Now()
	job.CompletedAt = &now
	h.DB.Save(&job)
}

func (h *Handler) failExport(job *common.ExportJob) {
	job.Status = common.JobStatusFailed
	now := time.Now()
	job.CompletedAt = &now
	h.DB.Save(job)
}
