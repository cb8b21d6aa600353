package scraper

import (
	"math"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// Retirement thresholds for pooled pages.
const (
	maxErrScore = 3.0
	maxUses     = 50
	maxPageAge  = 50 * time.Minute
)

// pageHealth tracks how a pooled page has fared across checks.
//
// Scoring rules:
//   - clean check: errScore -= 0.5 (min 0)
//   - each failed navigation: errScore += 1.0
//
// A page is retired once any of errScore, use count or age crosses its
// threshold.
type pageHealth struct {
	errScore float64
	uses     int
	created  time.Time
}

func (h *pageHealth) record(navFailures int) {
	h.uses++
	if navFailures == 0 {
		h.errScore = math.Max(0, h.errScore-0.5)
		return
	}
	h.errScore += float64(navFailures)
}

func (h *pageHealth) shouldRetire(now time.Time) bool {
	return h.errScore >= maxErrScore ||
		h.uses >= maxUses ||
		now.Sub(h.created) >= maxPageAge
}

// healthBook holds one pageHealth per live page.
type healthBook struct {
	mu    sync.Mutex
	pages map[proto.TargetTargetID]*pageHealth
}

func newHealthBook() *healthBook {
	return &healthBook{pages: make(map[proto.TargetTargetID]*pageHealth)}
}

// track starts the clock for a newly created page.
func (b *healthBook) track(id proto.TargetTargetID, now time.Time) {
	b.mu.Lock()
	b.pages[id] = &pageHealth{created: now}
	b.mu.Unlock()
}

// report records the outcome of one check on page id and reports whether
// the page should be retired. A retired page is forgotten.
func (b *healthBook) report(id proto.TargetTargetID, navFailures int, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.pages[id]
	if !ok {
		h = &pageHealth{created: now}
		b.pages[id] = h
	}
	h.record(navFailures)
	if h.shouldRetire(now) {
		delete(b.pages, id)
		return true
	}
	return false
}
