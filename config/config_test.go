package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if !cfg.Browser.Headless {
		t.Error("expected headless by default")
	}
	if cfg.Browser.WindowWidth != 1920 || cfg.Browser.WindowHeight != 1080 {
		t.Errorf("expected 1920x1080 window, got %dx%d",
			cfg.Browser.WindowWidth, cfg.Browser.WindowHeight)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected default log level warn, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("expected default log format text, got %q", cfg.Log.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JURL_HEADLESS", "false")
	t.Setenv("JURL_NO_SANDBOX", "true")
	t.Setenv("JURL_BROWSER_BIN", "/usr/bin/chromium")
	t.Setenv("JURL_PROXY", "http://localhost:8888")
	t.Setenv("JURL_WINDOW_WIDTH", "1280")
	t.Setenv("JURL_LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Browser.Headless {
		t.Error("JURL_HEADLESS=false was not applied")
	}
	if !cfg.Browser.NoSandbox {
		t.Error("JURL_NO_SANDBOX=true was not applied")
	}
	if cfg.Browser.BrowserBin != "/usr/bin/chromium" {
		t.Errorf("browser bin override not applied: %q", cfg.Browser.BrowserBin)
	}
	if cfg.Browser.Proxy != "http://localhost:8888" {
		t.Errorf("proxy override not applied: %q", cfg.Browser.Proxy)
	}
	if cfg.Browser.WindowWidth != 1280 {
		t.Errorf("window width override not applied: %d", cfg.Browser.WindowWidth)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level override not applied: %q", cfg.Log.Level)
	}
}

func TestLoadMalformedEnvFallsBack(t *testing.T) {
	t.Setenv("JURL_WINDOW_WIDTH", "wide")
	t.Setenv("JURL_HEADLESS", "maybe")

	cfg := Load()

	if cfg.Browser.WindowWidth != 1920 {
		t.Errorf("malformed int must fall back to default, got %d", cfg.Browser.WindowWidth)
	}
	if !cfg.Browser.Headless {
		t.Error("malformed bool must fall back to default")
	}
}
