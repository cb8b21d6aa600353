package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/use-agent/rankcheck/checker"
	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/engine"
	"github.com/use-agent/rankcheck/models"
	"github.com/use-agent/rankcheck/scraper"
)

var checkCmd = &cobra.Command{
	Use:   "check <keyword> <domain>",
	Short: "Run one rank check and print the result",
	Example: `  rankcheck check "苏州空谷网络科技有限公司" kgu.cn
  rankcheck check --engine baidu --pages 20 "golang" go.dev`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.String("engine", models.EngineGoogle, "search engine: google or baidu")
	f.Int("pages", 0, "result pages to check, 1-1000 (default RANKCHECK_DEFAULT_PAGES)")
	f.String("match", models.MatchSubstring, "match mode: substring or host")
	f.Int("timeout", 0, "timeout in seconds (default RANKCHECK_DEFAULT_TIMEOUT)")
	f.String("screenshot", "response.png", "where to write the screenshot of a match")
	f.Bool("json", false, "print the result as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	closeLog := initLogger(cfg.Log, os.Stderr)
	defer closeLog()

	flags := cmd.Flags()
	req := &models.CheckRequest{Keyword: args[0], Domain: args[1]}
	req.Engine, _ = flags.GetString("engine")
	req.Pages, _ = flags.GetInt("pages")
	req.MatchMode, _ = flags.GetString("match")
	req.Timeout, _ = flags.GetInt("timeout")
	shotPath, _ := flags.GetString("screenshot")
	asJSON, _ := flags.GetBool("json")

	// Concurrency is one, so a single tab is enough.
	cfg.Browser.MaxPages = 1
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Checker)
	if err != nil {
		return err
	}
	defer sc.Close()

	resolver := engine.NewHTTPResolver(cfg.Checker.ResolveTimeout, cfg.Browser.Proxy)
	ck := checker.New(sc, resolver, cfg.Checker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	result, err := ck.Check(ctx, req, func(page, pages int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%s", models.ProgressText(page, pages))
	})
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if result.HasScreenshot && shotPath != "" {
		if err := os.WriteFile(shotPath, result.Screenshot, 0o644); err != nil {
			slog.Warn("failed to write screenshot", "path", shotPath, "error", err)
		} else {
			slog.Info("screenshot written", "path", shotPath)
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printResult(out, result)
}

// printResult writes the rank, or the "not found" warning followed by every
// collected entry.
func printResult(w io.Writer, res *models.CheckResult) error {
	if res.Found {
		_, err := fmt.Fprintf(w, "域名排名 | Domain rank: %d\n", res.Rank)
		return err
	}

	fmt.Fprintf(w, "在前%d页中找不到域名 | Domain not found in the first %d page(s)\n\n",
		res.PagesRequested, res.PagesRequested)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "排名\tTITLE\tURL")
	for _, e := range res.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Rank, e.Title, e.URL)
	}
	return tw.Flush()
}
