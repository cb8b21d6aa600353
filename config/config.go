package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Checker   CheckerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity, and therefore the number of
	// checks that can run at once.
	MaxPages int // default: 4

	// Proxy is the proxy URL used by the browser and the redirect resolver.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// CheckerConfig controls rank check behavior.
type CheckerConfig struct {
	// DefaultPages is used when a request does not say how many result
	// pages to read.
	DefaultPages int // default: 100

	// DefaultTimeout bounds a whole check.
	DefaultTimeout time.Duration // default: 10m

	// MaxTimeout is the maximum timeout a client may ask for.
	MaxTimeout time.Duration // default: 30m

	// PageTimeout bounds waiting for a single result page to render.
	PageTimeout time.Duration // default: 30s

	// ResolveTimeout bounds following one Baidu redirect link.
	ResolveTimeout time.Duration // default: 10s

	// BlockedResourceTypes lists resource types the browser never loads.
	// Images and stylesheets stay on so screenshots look right.
	// default: ["Font", "Media"]
	BlockedResourceTypes []string

	// AcceptLanguage is sent with every browser request.
	AcceptLanguage string // default: "zh-CN,zh;q=0.9,en;q=0.8"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// JobsConfig controls the asynchronous check store.
type JobsConfig struct {
	// TTL is how long a job is kept after it was created.
	TTL time.Duration // default: 1h

	// MaxEntries caps the number of stored jobs; the oldest is evicted.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"

	// File, if set, receives a copy of the log with size-based rotation.
	File string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("RANKCHECK_HOST", "0.0.0.0"),
			Port: envIntOr("RANKCHECK_PORT", 8080),
			Mode: envOr("RANKCHECK_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("RANKCHECK_HEADLESS", true),
			MaxPages:   envIntOr("RANKCHECK_MAX_PAGES", 4),
			Proxy:      os.Getenv("RANKCHECK_PROXY"),
			NoSandbox:  envBoolOr("RANKCHECK_NO_SANDBOX", false),
			BrowserBin: os.Getenv("RANKCHECK_BROWSER_BIN"),
		},
		Checker: CheckerConfig{
			DefaultPages:   envIntOr("RANKCHECK_DEFAULT_PAGES", 100),
			DefaultTimeout: envDurationOr("RANKCHECK_DEFAULT_TIMEOUT", 10*time.Minute),
			MaxTimeout:     envDurationOr("RANKCHECK_MAX_TIMEOUT", 30*time.Minute),
			PageTimeout:    envDurationOr("RANKCHECK_PAGE_TIMEOUT", 30*time.Second),
			ResolveTimeout: envDurationOr("RANKCHECK_RESOLVE_TIMEOUT", 10*time.Second),
			BlockedResourceTypes: envSliceOr("RANKCHECK_BLOCKED_RESOURCES", []string{
				"Font", "Media",
			}),
			AcceptLanguage: envOr("RANKCHECK_ACCEPT_LANGUAGE", "zh-CN,zh;q=0.9,en;q=0.8"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("RANKCHECK_AUTH_ENABLED", false),
			APIKeys: envSliceOr("RANKCHECK_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RANKCHECK_RATE_RPS", 1.0),
			Burst:             envIntOr("RANKCHECK_RATE_BURST", 5),
		},
		Jobs: JobsConfig{
			TTL:        envDurationOr("RANKCHECK_JOB_TTL", time.Hour),
			MaxEntries: envIntOr("RANKCHECK_JOB_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("RANKCHECK_LOG_LEVEL", "info"),
			Format: envOr("RANKCHECK_LOG_FORMAT", "json"),
			File:   os.Getenv("RANKCHECK_LOG_FILE"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
