package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/jobs"
	"github.com/use-agent/rankcheck/models"
)

// utf8BOM makes spreadsheet apps read Chinese titles correctly.
const utf8BOM = "\ufeff"

// PostJob returns a handler for POST /api/v1/jobs.
// It validates the request and starts the check in the background.
func PostJob(jm *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CheckRequest
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, models.NewCheckError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		job, err := jm.Submit(&req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, models.JobResponse{
			ID:     job.ID,
			Status: models.JobProcessing,
			Pages:  req.Pages,
		})
	}
}

// GetJob returns a handler for GET /api/v1/jobs/:id.
func GetJob(jm *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := lookupJob(c, jm)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, job.Status())
	}
}

// GetScreenshot returns a handler for GET /api/v1/jobs/:id/screenshot.
// It serves the highlighted PNG of the matching result.
func GetScreenshot(jm *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := lookupJob(c, jm)
		if !ok {
			return
		}
		result := job.Result()
		if result == nil || len(result.Screenshot) == 0 {
			respondError(c, models.NewCheckError(models.ErrCodeJobNotFound, "没有截图 | No screenshot for this job", nil))
			return
		}
		c.Header("Cache-Control", "private, max-age=3600")
		c.Data(http.StatusOK, "image/png", result.Screenshot)
	}
}

// GetResultsCSV returns a handler for GET /api/v1/jobs/:id/results.csv.
// It serves the ranked entries of a finished job.
func GetResultsCSV(jm *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := lookupJob(c, jm)
		if !ok {
			return
		}
		result := job.Result()
		if result == nil {
			respondError(c, models.NewCheckError(models.ErrCodeJobNotFound, "任务尚无结果 | Job has no results yet", nil))
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rankcheck-%s.csv"`, job.ID))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)

		_, _ = c.Writer.WriteString(utf8BOM)
		if err := WriteCSV(c.Writer, result.Entries); err != nil {
			_ = c.Error(err)
		}
	}
}

// WriteCSV writes entries as "rank,title,url" rows with a header line.
func WriteCSV(w io.Writer, entries []models.ResultEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "title", "url"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{strconv.Itoa(e.Rank), e.Title, e.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func lookupJob(c *gin.Context, jm *jobs.Manager) (*jobs.Job, bool) {
	job, ok := jm.Get(c.Param("id"))
	if !ok {
		respondError(c, models.NewCheckError(models.ErrCodeJobNotFound, "任务不存在 | Job not found", nil))
		return nil, false
	}
	return job, true
}
