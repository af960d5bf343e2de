package config

import (
	"os"
	"strconv"
)

// Config holds ambient application configuration. Per-run request options come
// from CLI flags; everything here is environment-level plumbing.
type Config struct {
	Browser BrowserConfig
	Log     LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is the proxy URL applied to browser and http-engine requests.
	Proxy string

	// WindowWidth and WindowHeight fix the browser window size.
	WindowWidth  int // default: 1920
	WindowHeight int // default: 1080
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "warn"
	Format string // "text" or "json"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
// The warn default log level keeps curl-like stdout/stderr output clean.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:     envBoolOr("JURL_HEADLESS", true),
			NoSandbox:    envBoolOr("JURL_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("JURL_BROWSER_BIN"),
			Proxy:        os.Getenv("JURL_PROXY"),
			WindowWidth:  envIntOr("JURL_WINDOW_WIDTH", 1920),
			WindowHeight: envIntOr("JURL_WINDOW_HEIGHT", 1080),
		},
		Log: LogConfig{
			Level:  envOr("JURL_LOG_LEVEL", "warn"),
			Format: envOr("JURL_LOG_FORMAT", "text"),
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
