package exports

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"csv-stream-printer/common"
	"csv-stream-printer/parsers"

	"github.com/gin-gonic/gin"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatText   = "text"
)

// RegisterRoutes mounts the export endpoints on group
func RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:job_id", StreamExport)
}

// StreamExport godoc
// @Summary Stream the records of a completed parse job
// @Description Streams records as NDJSON (as stored) or as {name=value, ...} text lines in header order
// @Tags exports
// @Produce application/x-ndjson
// @Produce text/plain
// @Param job_id path string true "Import Job ID"
// @Param format query string false "Export format (ndjson or text, default ndjson)"
// @Success 200 {file} file "Streaming export data"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Job not found"
// @Failure 409 {object} map[string]string "Job not completed"
// @Router /exports/{job_id} [get]
func StreamExport(c *gin.Context) {
	format := c.DefaultQuery("format", FormatNDJSON)
	if verr := common.ValidateEnum("format", format, []string{FormatNDJSON, FormatText}); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}

	var job common.ParseJob
	if err := common.GetDB().Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}
	if job.Status != common.JobStatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Import job is %s", job.Status)})
		return
	}

	file, err := os.Open(job.OutputPath)
	if err != nil {
		log.Printf("Failed to open output of job %s: %v", job.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export data is not available"})
		return
	}
	defer file.Close()

	c.Set(common.MetricRecordsKey, job.TotalRecords)

	if format == FormatNDJSON {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ndjson", job.ID))
		c.DataFromReader(http.StatusOK, -1, "application/x-ndjson", file, nil)
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := writeText(c.Writer, file, job.HeaderFields()); err != nil {
		log.Printf("Export of job %s stopped: %v", job.ID, err)
	}
}

// writeText renders stored NDJSON records as {name=value, ...} lines
func writeText(w io.Writer, r io.Reader, header []string) error {
	records, errors := parsers.ParseNDJSON(r)

	errCh := make(chan error, 1)
	go func() {
		var first error
		for err := range errors {
			if first == nil {
				first = err
			}
		}
		errCh <- first
	}()

	bw := bufio.NewWriter(w)
	var writeErr error
	for record := range records {
		if writeErr != nil {
			continue
		}
		_, writeErr = fmt.Fprintln(bw, parsers.FormatRecord(record, header))
	}
	if writeErr == nil {
		writeErr = bw.Flush()
	}

	if err := <-errCh; err != nil {
		return err
	}
	return writeErr
}
