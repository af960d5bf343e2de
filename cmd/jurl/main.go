package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/sharpner/jurl/config"
	"github.com/sharpner/jurl/content"
	"github.com/sharpner/jurl/fetcher"
	"github.com/sharpner/jurl/models"
)

// Flag variables.
var (
	flagMethod       string
	flagInclude      bool
	flagVerbose      bool
	flagLocation     bool
	flagOutput       string
	flagHeaders      []string
	flagData         string
	flagWaitSelector string
	flagTimeout      int
	flagScreenshot   string
	flagFormat       string
	flagSilent       bool
	flagUserAgent    string
	flagEngine       string
	flagStealth      bool
	flagSelect       string
)

var rootCmd = &cobra.Command{
	Use:   "jurl <url>",
	Short: "A curl-like tool with JavaScript rendering capabilities",
	Long: `jurl - JavaScript-enabled curl replacement

jurl is a command-line HTTP client similar to curl, but with built-in
JavaScript rendering using a headless Chromium driven over CDP. This lets it
fetch content from JavaScript-heavy sites that regular curl cannot handle.

Examples:
  # Basic GET request with JavaScript rendering
  jurl https://example.com

  # Save rendered content to file
  jurl -o output.html https://example.com

  # Get only text content (no HTML tags)
  jurl --format text https://example.com

  # Take a screenshot of the page
  jurl --screenshot page.png https://example.com

  # Wait for a specific element to load
  jurl --wait-for-selector "div.content" https://example.com

  # Real POST via request interception
  jurl -X POST -d "key=value" https://example.com/api

  # Skip the browser for static pages
  jurl --engine http https://example.com

The browser is downloaded automatically on first run and cached locally.
JURL_BROWSER_BIN overrides the Chromium binary, JURL_NO_SANDBOX disables the
sandbox (Docker), JURL_PROXY sets a proxy for both engines.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagMethod, "request", "X", "GET", "Request method to use (GET or POST)")
	f.BoolVarP(&flagInclude, "include", "i", false, "Include the response status and headers in the output")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Show connection details and progress on stderr")
	f.BoolVarP(&flagLocation, "location", "L", false, "Follow redirects (http engine; the browser always follows)")
	f.StringVarP(&flagOutput, "output", "o", "", "Write output to file instead of stdout")
	f.StringArrayVarP(&flagHeaders, "header", "H", nil, "Pass custom header(s) to the server, format 'Name: value'")
	f.StringVarP(&flagData, "data", "d", "", "Data to send as the POST request body")
	f.StringVar(&flagWaitSelector, "wait-for-selector", "", "Wait for a CSS selector to appear before capturing content")
	f.IntVar(&flagTimeout, "timeout", 30, "Maximum time in seconds to wait for page load or selector")
	f.StringVar(&flagScreenshot, "screenshot", "", "Capture a full-page PNG screenshot to the given file instead of content")
	f.StringVar(&flagFormat, "format", "html", "Output format: html, text, json or markdown")
	f.BoolVarP(&flagSilent, "silent", "s", false, "Suppress all non-essential output")
	f.StringVarP(&flagUserAgent, "user-agent", "A", "", "User-Agent to send to the server")
	f.StringVar(&flagEngine, "engine", "browser", "Fetch engine: browser (renders JS) or http (plain request)")
	f.BoolVar(&flagStealth, "stealth", false, "Inject anti-bot-detection JS before navigation")
	f.StringVar(&flagSelect, "select", "", "CSS selector applied to extracted HTML before output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "jurl: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	initLogger(cfg.Log)

	headers, err := models.ParseHeaders(flagHeaders)
	if err != nil {
		return err
	}

	req := &models.FetchRequest{
		URL:             args[0],
		Method:          flagMethod,
		Headers:         headers,
		Data:            flagData,
		UserAgent:       flagUserAgent,
		WaitSelector:    flagWaitSelector,
		Timeout:         flagTimeout,
		Screenshot:      flagScreenshot,
		Format:          flagFormat,
		Engine:          flagEngine,
		Stealth:         flagStealth,
		Selector:        flagSelect,
		FollowRedirects: flagLocation,
	}
	req.Defaults()
	// Rejected before any browser or network resource is acquired.
	if err := req.Validate(); err != nil {
		return err
	}

	progress := newProgress(flagVerbose)
	w := cmd.OutOrStdout()
	ctx := context.Background()

	progress.printf("* Connecting to %s...", req.URL)

	var result *fetcher.Result
	if req.Engine == models.EngineHTTP {
		progress.printf("* Navigating to %s...", req.URL)
		if req.Method == "POST" && req.Data != "" {
			progress.printf("* Sending POST data: %s", req.Data)
		}
		result, err = fetcher.NewHTTPEngine(cfg.Browser.Proxy).Fetch(ctx, req)
	} else {
		f, launchErr := fetcher.New(cfg.Browser)
		if launchErr != nil {
			return launchErr
		}
		defer f.Close()

		progress.printf("* Navigating to %s...", req.URL)
		if req.Method == "POST" && req.Data != "" {
			progress.printf("* Sending POST data: %s", req.Data)
		}
		if req.WaitSelector != "" {
			progress.printf("* Waiting for selector: %s", req.WaitSelector)
		}
		if req.Screenshot != "" {
			progress.printf("* Taking screenshot to: %s", req.Screenshot)
		}
		result, err = f.Do(ctx, req)
	}
	if err != nil {
		return err
	}

	if req.Screenshot != "" {
		if err := writeScreenshot(w, req.Screenshot, result.Screenshot); err != nil {
			return err
		}
		progress.printf("* Connection closed")
		return nil
	}

	body, err := content.NewRenderer().Render(req, result)
	if err != nil {
		return err
	}

	opts := outputOptions{include: flagInclude, silent: flagSilent, file: flagOutput}
	if err := writeResult(w, progress, opts, result, body); err != nil {
		return err
	}

	progress.printf("* Connection closed")
	return nil
}

// initLogger configures slog on stderr so library logs never pollute the
// curl-like stdout stream.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}
