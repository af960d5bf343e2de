// jurl-mcp exposes the jurl fetcher as an MCP tool over stdio, so agents can
// fetch JavaScript-rendered pages without shelling out to the CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/sharpner/jurl/config"
	"github.com/sharpner/jurl/content"
	"github.com/sharpner/jurl/fetcher"
	"github.com/sharpner/jurl/models"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	s := server.NewMCPServer(
		"jurl",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	fetchTool := mcp.NewTool("fetch_url",
		mcp.WithDescription("Fetch a web page with a headless browser (JavaScript rendered) and return its content as html, text, json or markdown."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to fetch. Must include http:// or https://."),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'html' (default, rendered markup), 'text' (visible text), 'json' (body text pretty-printed when it parses as JSON), or 'markdown' (readability main content as Markdown)"),
			mcp.Enum("html", "text", "json", "markdown"),
		),
		mcp.WithString("engine",
			mcp.Description("Fetch engine: 'browser' (default, renders JavaScript) or 'http' (plain request, faster for static pages)"),
			mcp.Enum("browser", "http"),
		),
		mcp.WithString("wait_for_selector",
			mcp.Description("CSS selector to wait for before capturing content (browser engine only)"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Maximum seconds to wait for the page (default 30)"),
		),
		mcp.WithString("user_agent",
			mcp.Description("User-Agent to send to the server"),
		),
	)
	s.AddTool(fetchTool, handleFetchURL(cfg))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "jurl-mcp: %v\n", err)
		os.Exit(1)
	}
}

// browserOnce launches the browser lazily on the first browser-engine call
// and keeps it alive for the rest of the session.
var (
	browserOnce sync.Once
	browserF    *fetcher.Fetcher
	browserErr  error
)

func browserFetcher(cfg *config.Config) (*fetcher.Fetcher, error) {
	browserOnce.Do(func() {
		browserF, browserErr = fetcher.New(cfg.Browser)
	})
	return browserF, browserErr
}

func handleFetchURL(cfg *config.Config) server.ToolHandlerFunc {
	renderer := content.NewRenderer()
	limiter := rate.NewLimiter(rate.Limit(envFloatOr("JURL_MCP_RPS", 1)), envIntOr("JURL_MCP_BURST", 2))

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := limiter.Wait(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rate limit wait canceled: %v", err)), nil
		}

		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		timeout := 0
		if v, ok := request.GetArguments()["timeout"].(float64); ok {
			timeout = int(v)
		}

		req := &models.FetchRequest{
			URL:          url,
			Format:       request.GetString("format", ""),
			Engine:       request.GetString("engine", ""),
			WaitSelector: request.GetString("wait_for_selector", ""),
			Timeout:      timeout,
			UserAgent:    request.GetString("user_agent", ""),
		}
		req.Defaults()
		if err := req.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var result *fetcher.Result
		if req.Engine == models.EngineHTTP {
			result, err = fetcher.NewHTTPEngine(cfg.Browser.Proxy).Fetch(ctx, req)
		} else {
			f, launchErr := browserFetcher(cfg)
			if launchErr != nil {
				return mcp.NewToolResultError(launchErr.Error()), nil
			}
			result, err = f.Do(ctx, req)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		body, err := renderer.Render(req, result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(body), nil
	}
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
