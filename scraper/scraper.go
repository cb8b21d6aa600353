package scraper

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/engine"
	"github.com/use-agent/rankcheck/models"
)

// Scraper manages the global browser lifecycle and the page pool.
// It is safe for concurrent use.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	checkerCfg  config.CheckerConfig
	activePages atomic.Int32
	health      *healthBook
	startTime   time.Time
}

// NewScraper launches a headless browser and initialises the reusable page pool.
func NewScraper(browserCfg config.BrowserConfig, checkerCfg config.CheckerConfig) (*Scraper, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("window-size"), "1366,900")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCheckError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewCheckError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	pool := rod.NewPagePool(browserCfg.MaxPages)
	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)

	return &Scraper{
		browser:    browser,
		pagePool:   pool,
		browserCfg: browserCfg,
		checkerCfg: checkerCfg,
		health:     newHealthBook(),
		startTime:  time.Now(),
	}, nil
}

// Acquire borrows a tab from the pool, prepared for one check and bound to
// ctx. The returned release func must be called exactly once; it resets the
// tab and returns it to the pool.
//
// Preparation happens before the first navigation, since stealth scripts
// and request interception only apply to documents loaded after them:
//
//  1. stealth evasions (when asked)
//  2. Accept-Language header
//  3. resource blocking
//  4. context binding
func (s *Scraper) Acquire(ctx context.Context, withStealth bool) (engine.Tab, func(), error) {
	s.activePages.Add(1)

	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		p, err := s.browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return nil, err
		}
		s.health.track(p.TargetID, time.Now())
		return p, nil
	})
	if err != nil {
		s.pagePool.Put(nil)
		s.activePages.Add(-1)
		return nil, nil, models.NewCheckError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}

	var removeStealth func() error
	if withStealth {
		remove, evalErr := page.EvalOnNewDocument(stealth.JS)
		if evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		} else {
			removeStealth = remove
		}
	}

	if lang := s.checkerCfg.AcceptLanguage; lang != "" {
		if err := setExtraHeaders(page, map[string]string{"Accept-Language": lang}); err != nil {
			slog.Debug("failed to set extra headers", "error", err)
		}
	}

	router := setupHijack(page, s.checkerCfg.BlockedResourceTypes)
	t := newTab(page.Context(ctx), s.checkerCfg.PageTimeout)

	// The release func uses the unbound page so cleanup still works after
	// the check's context has expired.
	release := func() {
		defer s.activePages.Add(-1)

		if s.health.report(page.TargetID, t.navFailures, time.Now()) {
			slog.Info("retiring pooled page", "target", page.TargetID, "navFailures", t.navFailures)
			if router != nil {
				_ = router.Stop()
			}
			_ = page.Close()
			// A nil slot makes the pool create a fresh page on the next Get.
			s.pagePool.Put(nil)
			return
		}

		if router != nil {
			_ = router.Stop()
		}
		if removeStealth != nil {
			if err := removeStealth(); err != nil {
				slog.Debug("cleanup: failed to remove stealth script", "error", err)
			}
		}
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank",
				"error", navErr,
			)
		}
		s.pagePool.Put(page)
	}

	return t, release, nil
}

// Stats returns a snapshot of the pool's current state.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
	}
}

// Close drains the page pool and kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: draining page pool")
	s.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	slog.Info("scraper shutting down: closing browser")
	s.browser.MustClose()
	slog.Info("scraper shutdown complete", "uptime", time.Since(s.startTime).Round(time.Second))
}
