package imports

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"csv-stream-printer/common"
	"csv-stream-printer/parsers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	// ProgressUpdateInterval controls how often job progress is saved (in records)
	ProgressUpdateInterval = 2000
)

// ParseWorkers is the number of parsing goroutines per job. Zero means one per CPU.
var ParseWorkers int

// CreateImportRequest represents the request body for imports from a URL
type CreateImportRequest struct {
	FileURL   string `json:"file_url"`
	Delimiter string `json:"delimiter"`
}

// CreateImportResponse represents the response for import job creation
type CreateImportResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// GetImportResponse represents the response for import job status
type GetImportResponse struct {
	JobID        string                          `json:"job_id"`
	SourceName   string                          `json:"source_name"`
	Status       string                          `json:"status"`
	Delimiter    string                          `json:"delimiter"`
	Header       []string                        `json:"header,omitempty"`
	TotalRecords int                             `json:"total_records"`
	AnomalyCount int                             `json:"anomaly_count"`
	Errors       []common.RecordValidationResult `json:"errors,omitempty"`
	CreatedAt    string                          `json:"created_at"`
	UpdatedAt    string                          `json:"updated_at"`
	CompletedAt  *string                         `json:"completed_at,omitempty"`
}

// RegisterRoutes mounts the import endpoints on group
func RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", CreateImport)
	group.GET("/:job_id", GetImport)
}

// CreateImport godoc
// @Summary Create a new parse job
// @Description Uploads a delimited file (or points to one by URL) and parses it in the background
// @Tags imports
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Unique key to prevent duplicate imports"
// @Param file formData file false "Delimited file to parse"
// @Param delimiter formData string false "Single-character field delimiter (default ,)"
// @Param file_url body string false "URL of file to parse (alternative to file upload)"
// @Success 202 {object} CreateImportResponse "Import job created"
// @Success 200 {object} CreateImportResponse "Existing job returned (idempotency)"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /imports [post]
func CreateImport(c *gin.Context) {
	db := common.GetDB()

	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}

	// Check for existing job with same idempotency key
	var existingJob common.ParseJob
	if err := db.Where("idempotency_key = ?", idempotencyKey).First(&existingJob).Error; err == nil {
		c.Set(common.MetricJobIDKey, existingJob.ID)
		c.JSON(http.StatusOK, CreateImportResponse{
			JobID:     existingJob.ID,
			Status:    existingJob.Status,
			CreatedAt: existingJob.CreatedAt.Format(time.RFC3339),
		})
		return
	}

	var filePath, sourceName, delimiter string

	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
			return
		}
		defer file.Close()

		delimiter = c.PostForm("delimiter")
		sourceName = header.Filename
		filePath = storedPath(header.Filename)

		if err := saveFile(file, filePath); err != nil {
			log.Printf("Failed to save upload %s: %v", header.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
	} else {
		var req CreateImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if verr := common.ValidateRequired("file_url", req.FileURL); verr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		req.FileURL = strings.TrimSpace(req.FileURL)

		delimiter = req.Delimiter
		sourceName = req.FileURL
		filePath = storedPath(req.FileURL)

		if err := downloadFile(req.FileURL, filePath); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to download file: %v", err)})
			return
		}
	}

	if delimiter == "" {
		delimiter = string(parsers.DefaultDelimiter)
	}
	if _, verr := common.ValidateDelimiter(delimiter); verr != nil {
		os.Remove(filePath)
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}

	now := time.Now()
	job := common.ParseJob{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		SourceName:     sourceName,
		FilePath:       filePath,
		Delimiter:      delimiter,
		Status:         common.JobStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := db.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}

	// Queue job for background processing
	go ProcessImportJob(job.ID)
	c.Set(common.MetricJobIDKey, job.ID)

	c.JSON(http.StatusAccepted, CreateImportResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	})
}

// GetImport godoc
// @Summary Get parse job status
// @Description Retrieves the status, header and line anomalies of a parse job
// @Tags imports
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Success 200 {object} GetImportResponse "Import job details"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /imports/{job_id} [get]
func GetImport(c *gin.Context) {
	db := common.GetDB()
	jobID := c.Param("job_id")

	var job common.ParseJob
	if err := db.Where("id = ?", jobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}

	// Set rows processed for metrics
	c.Set(common.MetricRecordsKey, job.TotalRecords)

	response := GetImportResponse{
		JobID:        job.ID,
		SourceName:   job.SourceName,
		Status:       job.Status,
		Delimiter:    job.Delimiter,
		Header:       job.HeaderFields(),
		TotalRecords: job.TotalRecords,
		AnomalyCount: job.AnomalyCount,
		Errors:       job.Anomalies(),
		CreatedAt:    job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    job.UpdatedAt.Format(time.RFC3339),
	}

	if job.CompletedAt != nil {
		completedStr := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedStr
	}

	c.JSON(http.StatusOK, response)
}

// storedPath builds a unique, filesystem-safe path in UploadsDir for an uploaded name or URL
func storedPath(name string) string {
	ext := filepath.Ext(name)
	base := slug.Make(strings.TrimSuffix(filepath.Base(name), ext))
	if base == "" {
		base = "upload"
	}
	if ext == "" || len(ext) > 8 {
		ext = ".csv"
	}
	fileName := fmt.Sprintf("%s_%s_%s%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8], base, strings.ToLower(ext))
	return filepath.Join(common.UploadsDir, fileName)
}

func saveFile(src io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// downloadFile downloads a file from URL
func downloadFile(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return saveFile(resp.Body, path)
}

// ProcessImportJob parses a job's file in the background and stores the records as NDJSON
func ProcessImportJob(jobID string) {
	db := common.GetDB()

	var job common.ParseJob
	if err := db.Where("id = ?", jobID).First(&job).Error; err != nil {
		log.Printf("Import job %s not found: %v", jobID, err)
		return
	}

	job.Status = common.JobStatusProcessing
	job.UpdatedAt = time.Now()
	db.Save(&job)

	processErr := processFile(&job)

	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	if processErr != nil {
		log.Printf("Import job %s failed: %v", job.ID, processErr)
		job.Status = common.JobStatusFailed
		result := common.RecordValidationResult{}
		result.AddError("file", processErr.Error())
		errorsJSON, _ := json.Marshal(append(job.Anomalies(), result))
		job.Errors = string(errorsJSON)
	} else {
		job.Status = common.JobStatusCompleted
	}

	db.Save(&job)
}

// processFile runs the delimited parser over job.FilePath and writes job.OutputPath
func processFile(job *common.ParseJob) error {
	db := common.GetDB()

	file, err := os.Open(job.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(common.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	job.OutputPath = filepath.Join(common.OutputDir, job.ID+".ndjson")
	out, err := os.Create(job.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	opts := parsers.StreamOptions{
		Delimiter: job.Delimiter[0],
		Workers:   ParseWorkers,
		Ordered:   true,
	}
	header, records, errs := parsers.ParseDelimited(context.Background(), file, opts)
	job.SetHeaderFields(header)

	type outcome struct {
		anomalies []common.RecordValidationResult
		readErr   error
	}
	done := make(chan outcome, 1)
	go func() {
		var o outcome
		for err := range errs {
			var lineErr *parsers.LineError
			if errors.As(err, &lineErr) {
				result := common.RecordValidationResult{RowNumber: lineErr.Line}
				result.AddError("line", lineErr.Err.Error())
				o.anomalies = append(o.anomalies, result)
				continue
			}
			if o.readErr == nil {
				o.readErr = err
			}
		}
		done <- o
	}()

	w := bufio.NewWriter(out)
	var writeErr error
	for record := range records {
		if writeErr != nil {
			continue
		}
		if err := parsers.WriteNDJSON(w, record, header); err != nil {
			writeErr = err
			continue
		}
		job.TotalRecords++

		if job.TotalRecords%ProgressUpdateInterval == 0 {
			job.UpdatedAt = time.Now()
			db.Save(job)
		}
	}
	if writeErr == nil {
		writeErr = w.Flush()
	}

	o := <-done
	job.AnomalyCount = len(o.anomalies)
	if len(o.anomalies) > 0 {
		errorsJSON, _ := json.Marshal(o.anomalies)
		job.Errors = string(errorsJSON)
	}

	if o.readErr != nil {
		return fmt.Errorf("failed to read file: %w", o.readErr)
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write output: %w", writeErr)
	}
	return nil
}
