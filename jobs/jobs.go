package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/webhook"
)

// Runner performs the check behind a job.
type Runner interface {
	Prepare(req *models.CheckRequest) error
	Check(ctx context.Context, req *models.CheckRequest, progress func(page, pages int)) (*models.CheckResult, error)
}

// Job is one asynchronous rank check. Its state is updated by the running
// check and read concurrently by status requests.
type Job struct {
	ID        string
	CreatedAt time.Time

	req models.CheckRequest

	mu     sync.RWMutex
	status string
	page   int
	result *models.CheckResult
	err    *models.ErrorDetail
	done   chan struct{}
}

// Status returns a consistent snapshot of the job for the API.
func (j *Job) Status() models.JobStatusResponse {
	j.mu.RLock()
	defer j.mu.RUnlock()

	resp := models.JobStatusResponse{
		ID:     j.ID,
		Status: j.status,
		Page:   j.page,
		Pages:  j.req.Pages,
		Result: j.result,
		Error:  j.err,
	}
	switch j.status {
	case models.JobProcessing:
		resp.Progress = models.ProgressPercent(j.page, 1, j.req.Pages)
		if j.page > 0 {
			resp.ProgressText = models.ProgressText(j.page, j.req.Pages)
		}
	default:
		resp.Progress = 100
	}
	return resp
}

// Result returns the finished check, or nil while the job is running or if
// it failed.
func (j *Job) Result() *models.CheckResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.result
}

// Done is closed when the job has completed or failed.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) setPage(page int) {
	j.mu.Lock()
	j.page = page
	j.mu.Unlock()
}

func (j *Job) finish(result *models.CheckResult, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err != nil {
		j.status = models.JobFailed
		var ce *models.CheckError
		if !errors.As(err, &ce) {
			ce = models.NewCheckError(models.ErrCodeInternal, err.Error(), err)
		}
		j.err = ce.ToDetail()
	} else {
		j.status = models.JobCompleted
		j.result = result
	}
	close(j.done)
}

// Manager stores jobs in memory and runs them with bounded concurrency.
// It is safe for concurrent use.
type Manager struct {
	runner     Runner
	ttl        time.Duration
	maxEntries int
	sem        chan struct{}

	mu    sync.RWMutex
	store map[string]*Job

	// ctx is the parent of every check; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewManager creates a Manager that runs at most concurrency checks at once.
// A background goroutine runs every 5 minutes to evict jobs older than
// cfg.TTL.
func NewManager(runner Runner, cfg config.JobsConfig, concurrency int) *Manager {
	if concurrency <= 0 {
		concurrency = 1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 500
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		ctx:        ctx,
		cancel:     cancel,
		runner:     runner,
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		sem:        make(chan struct{}, concurrency),
		store:      make(map[string]*Job),
		stop:       make(chan struct{}),
	}
	go m.cleanupLoop(5 * time.Minute)
	return m
}

// Submit validates req and starts the check in the background. Invalid
// requests are rejected with an ErrCodeInvalidInput error and no job is
// created.
func (m *Manager) Submit(req *models.CheckRequest) (*Job, error) {
	if err := m.runner.Prepare(req); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		req:       *req,
		status:    models.JobProcessing,
		done:      make(chan struct{}),
	}
	m.put(job)

	m.wg.Add(1)
	go m.run(job)

	return job, nil
}

// Get returns the job with the given id.
func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.store[id]
	return job, ok
}

// Len returns the number of stored jobs.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Close stops the cleanup loop, cancels running and queued checks and waits
// for them to wind down. Canceled jobs end as failed.
func (m *Manager) Close() {
	m.once.Do(func() {
		close(m.stop)
		m.cancel()
	})
	m.wg.Wait()
}

func (m *Manager) run(job *Job) {
	defer m.wg.Done()

	req := job.req
	result, err := m.check(job, &req)
	job.finish(result, err)

	slog.Info("job finished",
		"id", job.ID,
		"status", job.Status().Status,
		"engine", req.Engine,
		"duration", time.Since(job.CreatedAt).Round(time.Millisecond),
	)

	if req.WebhookURL != "" {
		eventType := webhook.EventCheckCompleted
		if err != nil {
			eventType = webhook.EventCheckFailed
		}
		webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret,
			webhook.NewEvent(eventType, job.ID, job.Status()))
	}
}

// check waits for a free slot and runs the check. A job still queued when
// the manager closes fails without taking a slot.
func (m *Manager) check(job *Job, req *models.CheckRequest) (*models.CheckResult, error) {
	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-m.ctx.Done():
	}
	if err := m.ctx.Err(); err != nil {
		return nil, models.NewCheckError(models.ErrCodeTimeout, "check canceled before it started", err)
	}

	return m.runner.Check(m.ctx, req, func(page, _ int) {
		job.setPage(page)
	})
}

// put stores job, evicting the oldest job first if the store is full.
func (m *Manager) put(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.maxEntries {
		var oldest *Job
		for _, j := range m.store {
			if oldest == nil || j.CreatedAt.Before(oldest.CreatedAt) {
				oldest = j
			}
		}
		if oldest != nil {
			delete(m.store, oldest.ID)
		}
	}
	m.store[job.ID] = job
}

// evictExpired drops jobs created before now minus the TTL.
func (m *Manager) evictExpired(now time.Time) int {
	cutoff := now.Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, j := range m.store {
		if j.CreatedAt.Before(cutoff) {
			delete(m.store, id)
			n++
		}
	}
	return n
}

func (m *Manager) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			if n := m.evictExpired(now); n > 0 {
				slog.Debug("expired jobs evicted", "count", n)
			}
		}
	}
}
