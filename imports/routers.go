package imports

import (
	"encoding/json"
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
	"gorm.io/gorm"
)

// Handler serves the import job endpoints. The database handle and config
// are injected at construction.
type Handler struct {
	DB  *gorm.DB
	Cfg common.Config
}

// NewHandler wires the import endpoints to a database and config
func NewHandler(db *gorm.DB, cfg common.Config) *Handler {
	return &Handler{DB: db, Cfg: cfg}
}

// RegisterRoutes mounts the import endpoints on a router group
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/imports", h.CreateImport)
	r.GET("/imports/:job_id", h.GetImport)
}

// CreateImportRequest represents the JSON request body for URL-based imports
type CreateImportRequest struct {
	OwnerID   string `json:"owner_id"`
	Mode      string `json:"mode"`
	BatchSize int    `json:"batch_size"`
	FileURL   string `json:"file_url"`
}

// CreateImportResponse represents the response for import job creation
type CreateImportResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// GetImportResponse represents the response for import job status
type GetImportResponse struct {
	JobID             string            `json:"job_id"`
	OwnerID           string            `json:"owner_id"`
	Mode              string            `json:"mode"`
	Status            string            `json:"status"`
	TotalRows         int               `json:"total_rows"`
	Created           int               `json:"created"`
	SkippedDuplicates int               `json:"skipped_duplicates"`
	DefaultedFields   int               `json:"defaulted_fields"`
	BatchesCommitted  int               `json:"batches_committed"`
	ArtifactDir       string            `json:"artifact_dir,omitempty"`
	Issues            []common.RowIssue `json:"issues,omitempty"`
	Error             string            `json:"error,omitempty"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
	CompletedAt       *string           `json:"completed_at,omitempty"`
}

// CreateImport godoc
// @Summary Create a new lead import job
// @Description Creates an import job that loads a legacy lead CSV for an owner, online (database writes) or offline (SQL artifacts)
// @Tags imports
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Unique key to prevent duplicate imports"
// @Param file formData file false "Lead CSV to import"
// @Param owner_id formData string false "Owning account id"
// @Param mode formData string false "online (default) or offline"
// @Param batch_size formData int false "Records per insert group"
// @Success 202 {object} CreateImportResponse "Import job created"
// @Success 200 {object} CreateImportResponse "Existing job returned (idempotency)"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /imports [post]
func (h *Handler) CreateImport(c *gin.Context) {
	// Get required idempotency key from header
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}

	// Check for existing job with same idempotency key
	var existingJob common.ImportJob
	if err := h.DB.Where("idempotency_key = ?", idempotencyKey).First(&existingJob).Error; err == nil {
		c.JSON(http.StatusOK, CreateImportResponse{
			JobID:     existingJob.ID,
			Status:    existingJob.Status,
			CreatedAt: existingJob.CreatedAt.Format(time.RFC3339),
		})
		return
	}

	var filePath string
	var ownerID string
	mode := common.ModeOnline
	batchSize := h.Cfg.BatchSize

	file, _, err := c.Request.FormFile("file")
	if err == nil {
		// Multipart upload
		defer file.Close()

		ownerID = c.PostForm("owner_id")
		if m := c.PostForm("mode"); m != "" {
			mode = m
		}
		if bs := c.PostForm("batch_size"); bs != "" {
			n, err := strconv.Atoi(bs)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "batch_size must be a positive integer"})
				return
			}
			batchSize = n
		}

		filePath, err = h.saveUpload(file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
	} else {
		// JSON body with a remote file URL
		var req CreateImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.FileURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file or file_url is required"})
			return
		}

		ownerID = req.OwnerID
		if req.Mode != "" {
			mode = req.Mode
		}
		if req.BatchSize > 0 {
			batchSize = req.BatchSize
		}

		os.MkdirAll(h.Cfg.UploadsDir, 0755)
		fileName := fmt.Sprintf("%s_%s.csv", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
		filePath = filepath.Join(h.Cfg.UploadsDir, fileName)
		if err := downloadFile(req.FileURL, filePath); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to download file: %v", err)})
			return
		}
	}

	ownerID = common.ResolveOwnerID(c, ownerID)
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return
	}
	if mode != common.ModeOnline && mode != common.ModeOffline {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be online or offline"})
		return
	}

	job := common.ImportJob{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		OwnerID:        ownerID,
		Mode:           mode,
		Status:         common.JobStatusPending,
		FilePath:       filePath,
		BatchSize:      batchSize,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.DB.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}

	// Queue job for background processing
	go h.ProcessImportJob(job.ID)

	c.JSON(http.StatusAccepted, CreateImportResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	})
}

// GetImport godoc
// @Summary Get import job status
// @Description Retrieves the status, counts and row issues of an import job
// @Tags imports
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Success 200 {object} GetImportResponse "Import job details"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /imports/{job_id} [get]
func (h *Handler) GetImport(c *gin.Context) {
	jobID := c.Param("job_id")

	var job common.ImportJob
	if err := h.DB.Where("id = ?", jobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}

	// Set rows processed for metrics
	c.Set("rows_processed", job.TotalRows)

	response := GetImportResponse{
		JobID:             job.ID,
		OwnerID:           job.OwnerID,
		Mode:              job.Mode,
		Status:            job.Status,
		TotalRows:         job.TotalRows,
		Created:           job.Created,
		SkippedDuplicates: job.SkippedDuplicates,
		DefaultedFields:   job.DefaultedFields,
		BatchesCommitted:  job.BatchesCommitted,
		ArtifactDir:       job.ArtifactDir,
		Error:             job.Error,
		CreatedAt:         job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         job.UpdatedAt.Format(time.RFC3339),
	}

	if job.CompletedAt != nil {
		completedStr := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedStr
	}

	if job.Issues != "" {
		var issues []common.RowIssue
		if err := json.Unmarshal([]byte(job.Issues), &issues); err == nil {
			response.Issues = issues
		}
	}

	c.JSON(http.StatusOK, response)
}

// ProcessImportJob processes an import job in the background
func (h *Handler) ProcessImportJob(jobID string) {
	var job common.ImportJob
	if err := h.DB.Where("id = ?", jobID).First(&job).Error; err != nil {
		return
	}

	job.Status = common.JobStatusProcessing
	job.UpdatedAt = time.Now()
	h.DB.Save(&job)

	file, err := os.Open(job.FilePath)
	if err != nil {
		h.finishJob(&job, Result{Err: fmt.Errorf("opening upload: %w", err)})
		return
	}
	defer file.Close()

	store := leads.NewRepository(h.DB)
	driver := NewDriver(store, job.BatchSize, h.Cfg.ImportYear)

	var res Result
	if job.Mode == common.ModeOffline {
		artifactDir := filepath.Join(h.Cfg.ExportsDir, job.ID[:8])
		res = driver.Export(job.OwnerID, file, artifactDir, "leads "+job.OwnerID)
		job.ArtifactDir = artifactDir
	} else {
		res = driver.Run(job.OwnerID, file)
	}

	h.finishJob(&job, res)
}

// finishJob writes the run's outcome back onto the job record
func (h *Handler) finishJob(job *common.ImportJob, res Result) {
	job.TotalRows = res.TotalRows
	job.Created = res.Created
	job.SkippedDuplicates = res.SkippedDuplicates
	job.DefaultedFields = res.DefaultedFields
	job.BatchesCommitted = res.BatchesCommitted
	job.Issues = res.Report.ToJSON()

	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	if res.Err != nil {
		job.Status = common.JobStatusFailed
		job.Error = res.Err.Error()
	} else {
		job.Status = common.JobStatusCompleted
	}

	h.DB.Save(job)
}

// saveUpload stores the uploaded CSV under the uploads directory
func (h *Handler) saveUpload(file io.Reader) (string, error) {
	os.MkdirAll(h.Cfg.UploadsDir, 0755)

	fileName := fmt.Sprintf("%s_%s.csv", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	filePath := filepath.Join(h.Cfg.UploadsDir, fileName)

	out, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return filePath, nil
}

// downloadFile downloads a file from URL
func downloadFile(url, filepath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
