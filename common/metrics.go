package common

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys handlers use to annotate the metric of the current request
const (
	MetricJobIDKey   = "job_id"
	MetricRecordsKey = "rows_processed"
)

// MetricsMiddleware stores one ApiMetric per request, attributed to the parse job it
// touched when the route or the handler names one
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		saveMetric(requestMetric(c, start))
	}
}

func requestMetric(c *gin.Context, start time.Time) ApiMetric {
	metric := ApiMetric{
		RequestID:  c.GetString("request_id"),
		JobID:      c.Param("job_id"),
		Endpoint:   c.FullPath(),
		Method:     c.Request.Method,
		StatusCode: c.Writer.Status(),
		DurationMs: int(time.Since(start).Milliseconds()),
		Timestamp:  start,
	}
	if metric.Endpoint == "" {
		// unmatched route
		metric.Endpoint = c.Request.URL.Path
	}
	if jobID := c.GetString(MetricJobIDKey); jobID != "" {
		metric.JobID = jobID
	}
	metric.RowsProcessed = c.GetInt(MetricRecordsKey)
	if len(c.Errors) > 0 {
		metric.Errors = c.Errors.String()
	}
	return metric
}

// saveMetric is best effort; a lost metric never fails the request
func saveMetric(metric ApiMetric) {
	db := GetDB()
	if db == nil {
		return
	}
	if err := db.Create(&metric).Error; err != nil {
		log.Printf("Failed to save metric for %s %s: %v", metric.Method, metric.Endpoint, err)
	}
}
