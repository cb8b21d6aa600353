package models

// CheckResponse is the response for POST /api/v1/check.
type CheckResponse struct {
	// Success indicates whether the check completed without errors.
	// A check that ran but did not find the domain is still a success.
	Success bool `json:"success"`

	// Result is populated only when Success is true.
	Result *CheckResult `json:"result,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// CheckResult is the outcome of one rank check.
type CheckResult struct {
	// Rank is the 1-based position of the first matching entry, 0 if not found.
	Rank int `json:"rank"`

	// Found is Rank > 0.
	Found bool `json:"found"`

	Keyword   string `json:"keyword"`
	Domain    string `json:"domain"`
	Engine    string `json:"engine"`
	MatchMode string `json:"match_mode"`

	// PagesRequested is the page limit the walk ran with.
	PagesRequested int `json:"pages_requested"`

	// PagesVisited is how many result pages were actually read.
	PagesVisited int `json:"pages_visited"`

	// Entries lists every collected result in page-visit order. On a match
	// the list ends at the matching entry.
	Entries []ResultEntry `json:"entries"`

	// HasScreenshot reports whether a highlighted screenshot was captured.
	HasScreenshot bool `json:"has_screenshot"`

	// Screenshot is the PNG capture; it is served separately, never inlined.
	Screenshot []byte `json:"-"`

	// Timing provides duration breakdowns for the check.
	Timing TimingInfo `json:"timing"`
}

// ResultEntry is a single search-result listing with its rank.
type ResultEntry struct {
	Rank  int    `json:"rank"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// SearchMs is the time spent opening the engine and submitting the keyword.
	SearchMs int64 `json:"search_ms"`

	// WalkMs is the time spent walking result pages.
	WalkMs int64 `json:"walk_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Jobs      int       `json:"jobs"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
