package fetcher

// Result is the unified return type for both fetch engines.
type Result struct {
	// HTML is the raw page markup. For the browser engine this is the
	// rendered DOM; for the http engine the response body.
	HTML string

	// Text is the visible body text. Filled only when the requested format
	// needs it.
	Text string

	// Title is the page title.
	Title string

	// StatusCode is the HTTP status of the main document. For the browser
	// engine it is captured best-effort via the Performance API; 0 means
	// unknown.
	StatusCode int

	// Headers holds the real response headers. Only the http engine can
	// observe these; the browser engine leaves them nil.
	Headers map[string]string

	// FinalURL is the URL after any redirects.
	FinalURL string

	// Screenshot is the full-page PNG. Set only in screenshot mode.
	Screenshot []byte

	// EngineUsed records how the page was fetched: "browser" or "http".
	EngineUsed string
}
