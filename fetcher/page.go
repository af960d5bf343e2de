package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sharpner/jurl/models"
	"github.com/ysmood/gson"
)

// settleDelay is the fixed grace period after navigation when no selector is
// awaited, so late-arriving dynamic content can finish rendering. A heuristic,
// not a guarantee of completeness.
const settleDelay = 2 * time.Second

// Do performs the one-shot fetch sequence on a fresh page.
//
// Lifecycle (any failure aborts the run):
//
//  1. Timeout guard       – hard deadline on the entire operation
//  2. Create page         – one tab, closed on return
//  3. Stealth injection   – before navigation, or it has no effect
//  4. User-agent override – fatal on failure
//  5. Extra headers       – applied via the Network domain
//  6. POST hijack mount   – rewrites the document request (before navigation!)
//  7. Navigate
//  8. Wait                – selector wait, or load + fixed settle delay
//  9. Status capture      – best-effort via the Performance API
//  10. Screenshot short-circuit, or HTML/text extraction
func (f *Fetcher) Do(ctx context.Context, req *models.FetchRequest) (*Result, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	timeout := time.Duration(req.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// ── 2. Create page ────────────────────────────────────────────────
	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewFetchError(
			models.ErrCodeBrowserCrash,
			"failed to create page",
			err,
		)
	}
	defer func() { _ = page.Close() }()

	// ── 3. Stealth injection ──────────────────────────────────────────
	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// ── 4. User-agent override ────────────────────────────────────────
	if req.UserAgent != "" {
		if uaErr := (proto.NetworkSetUserAgentOverride{
			UserAgent: req.UserAgent,
		}).Call(page); uaErr != nil {
			return nil, models.NewFetchError(
				models.ErrCodeBrowserCrash,
				"failed to set user agent",
				uaErr,
			)
		}
	}

	// ── 5. Extra headers ──────────────────────────────────────────────
	if len(req.Headers) > 0 {
		if hdrErr := (proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(req.Headers),
		}).Call(page); hdrErr != nil {
			return nil, models.NewFetchError(
				models.ErrCodeBrowserCrash,
				"failed to set request headers",
				hdrErr,
			)
		}
	}

	// ── 6. POST hijack ────────────────────────────────────────────────
	// The browser can only navigate with GET; the router rewrites the
	// initial document request into a real POST with the -d body.
	if req.Method == "POST" {
		router := mountPostHijack(page, req.Data, req.Headers)
		defer func() { _ = router.Stop() }()
	}

	// ── 7. Navigate ───────────────────────────────────────────────────
	p := page.Context(ctx)
	if navErr := p.Navigate(req.URL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	// ── 8. Wait policy ────────────────────────────────────────────────
	if req.WaitSelector != "" {
		if waitErr := p.WaitElementsMoreThan(req.WaitSelector, 0); waitErr != nil {
			return nil, categorizeError(waitErr,
				fmt.Sprintf("selector %q did not appear", req.WaitSelector))
		}
	} else {
		if loadErr := p.WaitLoad(); loadErr != nil {
			return nil, categorizeError(loadErr, "page load did not complete")
		}
		select {
		case <-time.After(settleDelay):
		case <-ctx.Done():
			return nil, categorizeError(ctx.Err(), "fetch deadline reached during settle delay")
		}
	}

	// ── 9. Status capture (best-effort) ──────────────────────────────
	// performance.getEntriesByType("navigation") yields the main document's
	// HTTP status without any CDP event listeners.
	statusCode := 0
	if res, evalErr := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); evalErr == nil {
		statusCode = res.Value.Int()
	}

	// ── 10a. Screenshot short-circuit ────────────────────────────────
	if req.Screenshot != "" {
		data, shotErr := p.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if shotErr != nil {
			return nil, models.NewFetchError(
				models.ErrCodeExtraction,
				"screenshot capture failed",
				shotErr,
			)
		}
		return &Result{
			StatusCode: statusCode,
			Screenshot: data,
			EngineUsed: models.EngineBrowser,
		}, nil
	}

	// ── 10b. Extract rendered HTML ───────────────────────────────────
	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	// Visible body text, only when the format needs it. A page without a
	// body yields "" rather than an error; a failed eval is fatal.
	text := ""
	if req.Format == models.FormatText || req.Format == models.FormatJSON {
		res, evalErr := p.Eval(`() => document.body ? document.body.innerText : ""`)
		if evalErr != nil {
			return nil, models.NewFetchError(
				models.ErrCodeExtraction,
				"failed to evaluate body text",
				evalErr,
			)
		}
		text = res.Value.Str()
	}

	// ── 11. Title and final URL (best-effort) ────────────────────────
	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &Result{
		HTML:       rawHTML,
		Text:       text,
		Title:      title,
		StatusCode: statusCode,
		FinalURL:   finalURL,
		EngineUsed: models.EngineBrowser,
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed FetchErrors so the CLI can
// report timeouts distinctly from navigation failures.
func categorizeError(err error, msg string) *models.FetchError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewFetchError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewFetchError(models.ErrCodeTimeout, "fetch canceled", err)
	default:
		return models.NewFetchError(models.ErrCodeNavigation, msg, err)
	}
}
