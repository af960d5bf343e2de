package models

import (
	"fmt"
	"net/url"
	"strings"
)

// Output formats.
const (
	FormatHTML     = "html"
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Fetch engines.
const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"
)

// FetchRequest is the immutable per-run request record, built once from CLI
// input and read-only thereafter.
type FetchRequest struct {
	// URL is the target address. Must include http:// or https://.
	URL string

	// Method is the HTTP method. Only GET and POST are supported.
	Method string

	// Headers holds extra request headers parsed from "Name: value" strings.
	Headers map[string]string

	// Data is the POST request body. Ignored for GET.
	Data string

	// UserAgent overrides the browser's user-agent before navigation.
	UserAgent string

	// WaitSelector is a CSS selector to await before extraction.
	WaitSelector string

	// Timeout bounds the whole fetch, in seconds.
	Timeout int

	// Screenshot, when non-empty, is the PNG output path. Screenshot mode
	// short-circuits content extraction.
	Screenshot string

	// Format selects the extraction mode: html, text, json or markdown.
	Format string

	// Engine selects the fetch engine: browser or http.
	Engine string

	// Stealth injects anti-bot-detection JS before navigation (browser only).
	Stealth bool

	// Selector, when non-empty, is a CSS selector applied to the extracted
	// HTML before html/markdown rendering.
	Selector string

	// FollowRedirects controls redirect following in the http engine. The
	// browser engine always follows redirects.
	FollowRedirects bool
}

// Defaults fills in zero-value fields with their documented defaults and
// normalizes the method to upper case.
func (r *FetchRequest) Defaults() {
	if r.Method == "" {
		r.Method = "GET"
	}
	r.Method = strings.ToUpper(r.Method)
	if r.Timeout <= 0 {
		r.Timeout = 30
	}
	if r.Format == "" {
		r.Format = FormatHTML
	}
	if r.Engine == "" {
		r.Engine = EngineBrowser
	}
}

// Validate checks the request before any browser or network resource is
// acquired. Call Defaults first.
func (r *FetchRequest) Validate() error {
	u, err := url.Parse(r.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewFetchError(ErrCodeInvalidInput,
			fmt.Sprintf("invalid URL: %s (must include scheme, e.g. https://example.com)", r.URL), nil)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewFetchError(ErrCodeInvalidInput,
			fmt.Sprintf("unsupported URL scheme: %s", u.Scheme), nil)
	}

	switch r.Method {
	case "GET", "POST":
	default:
		return NewFetchError(ErrCodeInvalidInput,
			fmt.Sprintf("unsupported method: %s", r.Method), nil)
	}

	switch r.Format {
	case FormatHTML, FormatText, FormatJSON, FormatMarkdown:
	default:
		return NewFetchError(ErrCodeInvalidInput,
			fmt.Sprintf("unsupported format: %s (expected html, text, json or markdown)", r.Format), nil)
	}

	switch r.Engine {
	case EngineBrowser:
	case EngineHTTP:
		if r.Screenshot != "" {
			return NewFetchError(ErrCodeInvalidInput,
				"screenshot capture requires the browser engine", nil)
		}
		if r.WaitSelector != "" {
			return NewFetchError(ErrCodeInvalidInput,
				"--wait-for-selector requires the browser engine", nil)
		}
		if r.Stealth {
			return NewFetchError(ErrCodeInvalidInput,
				"--stealth requires the browser engine", nil)
		}
	default:
		return NewFetchError(ErrCodeInvalidInput,
			fmt.Sprintf("unsupported engine: %s (expected browser or http)", r.Engine), nil)
	}

	return nil
}

// ParseHeaders converts repeated curl-style "Name: value" strings into a
// header map. Malformed entries (no colon) are rejected.
func ParseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, NewFetchError(ErrCodeInvalidInput,
				fmt.Sprintf("malformed header %q (expected 'Name: value')", h), nil)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
