package models

import (
	"fmt"
	"math"
)

// Job statuses.
const (
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// JobResponse is the immediate response for POST /api/v1/jobs.
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Pages  int    `json:"pages"`
}

// JobStatusResponse is the response for GET /api/v1/jobs/:id.
type JobStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	// Page is the result page currently being read (1-based).
	Page int `json:"page"`

	// Pages is the page limit of the check.
	Pages int `json:"pages"`

	// Progress is a 1-100 percentage suitable for a progress bar.
	Progress int `json:"progress"`

	// ProgressText is a human-readable progress line.
	ProgressText string `json:"progress_text"`

	Result *CheckResult `json:"result,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// ProgressPercent maps value within [min, max] onto 1..100.
// Values outside the range are clamped; an empty range reports 100 once
// value reaches max and 1 before that. Halves round to even.
func ProgressPercent(value, min, max int) int {
	if max == min {
		if value >= max {
			return 100
		}
		return 1
	}
	clamped := value
	if clamped < min {
		clamped = min
	}
	if clamped > max {
		clamped = max
	}
	p := 1 + float64(clamped-min)*99/float64(max-min)
	return int(math.Max(1, math.Min(100, math.RoundToEven(p))))
}

// ProgressText formats the bilingual progress line shown while walking pages.
func ProgressText(page, pages int) string {
	return fmt.Sprintf("检查第%d/%d页 | Checking page %d/%d...", page, pages, page, pages)
}
