package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/rankcheck/api"
	"github.com/use-agent/rankcheck/checker"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/engine"
	"github.com/use-agent/rankcheck/jobs"
	"github.com/use-agent/rankcheck/scraper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the web form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides RANKCHECK_PORT)")
}

func serve(cfg *config.Config) error {
	// ── 1. Initialise structured logging ────────────────────────────
	closeLog := initLogger(cfg.Log, os.Stdout)
	defer closeLog()

	slog.Info("rankcheck starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 2. Initialise scraper (launches browser) ────────────────────
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Checker)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		return err
	}
	defer sc.Close()

	// ── 3. Checker and job manager ──────────────────────────────────
	resolver := engine.NewHTTPResolver(cfg.Checker.ResolveTimeout, cfg.Browser.Proxy)
	ck := checker.New(sc, resolver, cfg.Checker)

	jm := jobs.NewManager(ck, cfg.Jobs, cfg.Browser.MaxPages)

	// ── 4. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(ck, sc, jm, cfg, time.Now())

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// Cancel running and queued checks so their tabs are released before
	// the deferred sc.Close kills the browser.
	jm.Close()
	slog.Info("rankcheck stopped")
	return nil
}
