package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/use-agent/rankcheck/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// initLogger configures slog based on the LogConfig. Logs go to out and, if
// cfg.File is set, to a size-rotated file as well. The returned func closes
// the file.
func initLogger(cfg config.LogConfig, out io.Writer) func() error {
	w, closeFile := logWriter(cfg, out)

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closeFile
}

func logWriter(cfg config.LogConfig, out io.Writer) (io.Writer, func() error) {
	if cfg.File == "" {
		return out, func() error { return nil }
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
		LocalTime:  true,
	}
	return io.MultiWriter(out, file), file.Close
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
