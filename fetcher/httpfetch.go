package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	tls "github.com/refraction-networking/utls"
	"github.com/sharpner/jurl/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBody caps the response body read at 10 MB.
const maxBody = 10 << 20

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		// Should never happen with a valid utls version; the zero spec makes
		// ApplyPreset fail loudly at dial time instead.
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// HTTPEngine fetches the page over plain HTTP with a Chrome TLS fingerprint,
// skipping the browser entirely. No JavaScript runs, so dynamic pages come
// back as their initial markup.
type HTTPEngine struct {
	transport *http.Transport
}

// NewHTTPEngine creates an HTTPEngine. proxy, when non-empty, is an
// http/https proxy URL applied to all requests.
func NewHTTPEngine(proxy string) *HTTPEngine {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("httpfetch: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &HTTPEngine{transport: transport}
}

// Fetch performs one real HTTP request: GET, or POST with the -d body. Unlike
// the browser engine, redirect following honors req.FollowRedirects and the
// real response status and headers are observable.
func (e *HTTPEngine) Fetch(ctx context.Context, req *models.FetchRequest) (*Result, error) {
	timeout := time.Duration(req.Timeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Method == "POST" && req.Data != "" {
		body = strings.NewReader(req.Data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeInvalidInput, "failed to build request", err)
	}

	// Browser-like defaults; custom headers override them.
	httpReq.Header.Set("User-Agent", chromeUA)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "identity")
	if req.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	client := &http.Client{Transport: e.transport}
	if req.FollowRedirects {
		client.CheckRedirect = func(r *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		}
	} else {
		client.CheckRedirect = func(r *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	defer client.CloseIdleConnections()

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, categorizeError(err, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeExtraction, "failed to read response body", err)
	}
	rawHTML := string(raw)

	// Text/title via goquery; there is no live DOM to evaluate against.
	text := ""
	title := ""
	if doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); parseErr == nil {
		title = strings.TrimSpace(doc.Find("title").First().Text())
		if req.Format == models.FormatText || req.Format == models.FormatJSON {
			doc.Find("script, style, noscript").Remove()
			text = strings.TrimSpace(doc.Find("body").Text())
		}
	}

	return &Result{
		HTML:       rawHTML,
		Text:       text,
		Title:      title,
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		FinalURL:   resp.Request.URL.String(),
		EngineUsed: models.EngineHTTP,
	}, nil
}

// flattenHeaders joins repeated header values so the CLI can print one line
// per header name in a stable order (the map's keys are sorted at print time).
func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// SortedHeaderNames returns the header names in lexical order, for
// deterministic -i output.
func SortedHeaderNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
