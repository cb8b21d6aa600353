package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/rankcheck/config"
	"github.com/use-agent/rankcheck/models"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitLogger_WritesFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	path := filepath.Join(t.TempDir(), "rankcheck.log")
	var stdout bytes.Buffer
	closeLog := initLogger(config.LogConfig{Level: "info", Format: "json", File: path}, &stdout)

	slog.Info("check completed", "rank", 7)
	slog.Debug("hidden")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for name, got := range map[string]string{"stdout": stdout.String(), "file": string(data)} {
		if !strings.Contains(got, `"rank":7`) {
			t.Errorf("%s missing record: %q", name, got)
		}
		if strings.Contains(got, "hidden") {
			t.Errorf("%s has debug record at info level", name)
		}
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	if err := printResult(&buf, &models.CheckResult{Rank: 12, Found: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Domain rank: 12") {
		t.Errorf("found output = %q", buf.String())
	}

	buf.Reset()
	err := printResult(&buf, &models.CheckResult{
		PagesRequested: 3,
		Entries: []models.ResultEntry{
			{Rank: 1, Title: "A", URL: "https://a.org/"},
			{Rank: 2, Title: "B", URL: "https://b.org/"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "first 3 page(s)") || !strings.Contains(out, "https://b.org/") {
		t.Errorf("not found output = %q", out)
	}
}
