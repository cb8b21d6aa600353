package checker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/engine"
	"github.com/use-agent/rankcheck/metrics"
	"github.com/use-agent/rankcheck/models"
)

// TabProvider hands out browser tabs bound to a context. The release func
// returns the tab and must be called once the check is done with it.
type TabProvider interface {
	Acquire(ctx context.Context, stealth bool) (engine.Tab, func(), error)
}

// Checker runs rank checks: one tab, one engine session, one walk.
// It is safe for concurrent use; concurrency is bounded by the TabProvider.
type Checker struct {
	tabs     TabProvider
	resolver engine.Resolver
	cfg      config.CheckerConfig
}

// New creates a Checker. resolver is used for engines whose result links
// are redirects.
func New(tabs TabProvider, resolver engine.Resolver, cfg config.CheckerConfig) *Checker {
	return &Checker{tabs: tabs, resolver: resolver, cfg: cfg}
}

// Prepare applies defaults to req and validates it. Check calls it too; it
// is exported so asynchronous callers can reject bad input up front.
func (c *Checker) Prepare(req *models.CheckRequest) error {
	if req.Pages == 0 && c.cfg.DefaultPages > 0 {
		req.Pages = c.cfg.DefaultPages
	}
	req.Defaults()
	if err := req.Validate(); err != nil {
		return models.NewCheckError(models.ErrCodeInvalidInput, err.Error(), err)
	}
	if _, err := engine.NewMatcher(req.MatchMode, req.Domain); err != nil {
		return models.NewCheckError(models.ErrCodeInvalidInput, err.Error(), err)
	}
	return nil
}

// Check walks the engine's result pages for req.Keyword until req.Domain
// shows up or req.Pages pages have been read. progress, if non-nil, is
// called before each page.
//
// Errors are *models.CheckError. Anything that goes wrong in the browser or
// on the network is reported as ErrCodeNetwork with a generic message.
func (c *Checker) Check(ctx context.Context, req *models.CheckRequest, progress func(page, pages int)) (*models.CheckResult, error) {
	if err := c.Prepare(req); err != nil {
		return nil, err
	}
	match, _ := engine.NewMatcher(req.MatchMode, req.Domain)

	eng, err := engine.New(req.Engine, c.resolver)
	if err != nil {
		return nil, models.NewCheckError(models.ErrCodeInternal, "engine unavailable", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout(req.Timeout))
	defer cancel()

	metrics.ActiveChecks.Inc()
	defer metrics.ActiveChecks.Dec()

	start := time.Now()
	result, err := c.run(ctx, eng, req, match, progress)
	if err != nil {
		metrics.RecordCheck(eng.Name(), metrics.OutcomeError, time.Since(start), 0)
		slog.Warn("check failed",
			"engine", eng.Name(),
			"keyword", req.Keyword,
			"domain", req.Domain,
			"error", err,
		)
		return nil, err
	}

	outcome := metrics.OutcomeNotFound
	if result.Found {
		outcome = metrics.OutcomeFound
	}
	metrics.RecordCheck(eng.Name(), outcome, time.Since(start), result.PagesVisited)

	slog.Info("check completed",
		"engine", eng.Name(),
		"keyword", req.Keyword,
		"domain", req.Domain,
		"rank", result.Rank,
		"pages", result.PagesVisited,
		"entries", len(result.Entries),
		"ms", result.Timing.TotalMs,
	)
	return result, nil
}

func (c *Checker) run(ctx context.Context, eng engine.Engine, req *models.CheckRequest, match engine.Matcher, progress func(page, pages int)) (*models.CheckResult, error) {
	start := time.Now()

	tab, release, err := c.tabs.Acquire(ctx, eng.Stealth())
	if err != nil {
		return nil, categorizeError(ctx, err)
	}
	defer release()

	sess, err := eng.Open(ctx, tab, req.Keyword)
	if err != nil {
		return nil, categorizeError(ctx, err)
	}
	searchMs := time.Since(start).Milliseconds()

	walkStart := time.Now()
	out, err := engine.Walk(ctx, sess, engine.WalkOptions{
		MaxPages: req.Pages,
		Match:    match,
		Progress: progress,
	})
	if err != nil {
		return nil, categorizeError(ctx, err)
	}

	entries := make([]models.ResultEntry, len(out.Entries))
	for i, e := range out.Entries {
		entries[i] = models.ResultEntry{Rank: i + 1, Title: e.Title, URL: e.URL}
	}

	return &models.CheckResult{
		Rank:           out.Rank,
		Found:          out.Rank > 0,
		Keyword:        req.Keyword,
		Domain:         req.Domain,
		Engine:         eng.Name(),
		MatchMode:      req.MatchMode,
		PagesRequested: req.Pages,
		PagesVisited:   out.PagesVisited,
		Entries:        entries,
		HasScreenshot:  len(out.Screenshot) > 0,
		Screenshot:     out.Screenshot,
		Timing: models.TimingInfo{
			TotalMs:  time.Since(start).Milliseconds(),
			SearchMs: searchMs,
			WalkMs:   time.Since(walkStart).Milliseconds(),
		},
	}, nil
}

// timeout resolves the requested timeout in seconds against the configured
// default and maximum.
func (c *Checker) timeout(seconds int) time.Duration {
	d := c.cfg.DefaultTimeout
	if seconds > 0 {
		d = time.Duration(seconds) * time.Second
	}
	if d <= 0 {
		d = 10 * time.Minute
	}
	if c.cfg.MaxTimeout > 0 && d > c.cfg.MaxTimeout {
		d = c.cfg.MaxTimeout
	}
	return d
}

// categorizeError wraps raw errors into typed CheckErrors so the API layer
// can map them to appropriate HTTP status codes. rod does not always wrap
// the context error, so the check's own context is consulted as well.
func categorizeError(ctx context.Context, err error) *models.CheckError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return models.NewCheckError(models.ErrCodeTimeout, "check timed out", err)
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return models.NewCheckError(models.ErrCodeTimeout, "check canceled", err)
	default:
		return models.NewCheckError(models.ErrCodeNetwork, models.NetworkErrorMessage, err)
	}
}
