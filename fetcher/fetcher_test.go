package fetcher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/sharpner/jurl/config"
	"github.com/sharpner/jurl/models"
)

// newBrowserFetcher launches a real headless browser, skipping the test when
// no local Chromium is installed (tests never trigger a browser download).
func newBrowserFetcher(t *testing.T) *Fetcher {
	t.Helper()
	if _, has := launcher.LookPath(); !has {
		t.Skip("no local Chromium found, skipping browser test")
	}
	f, err := New(config.Load().Browser)
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func browserRequest(url string) *models.FetchRequest {
	req := &models.FetchRequest{
		URL:     url,
		Timeout: 20,
	}
	req.Defaults()
	return req
}

func TestBrowserFetchHTML(t *testing.T) {
	srv := newTestServer(t)
	f := newBrowserFetcher(t)

	result, err := f.Do(context.Background(), browserRequest(srv.URL+"/hello"))
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(result.HTML) == 0 {
		t.Fatal("expected non-empty HTML")
	}
	if !strings.Contains(result.HTML, "Hello World") {
		t.Errorf("rendered HTML does not contain page body: %q", result.HTML)
	}
	if result.Title != "hello" {
		t.Errorf("expected title %q, got %q", "hello", result.Title)
	}
}

func TestBrowserFetchText(t *testing.T) {
	srv := newTestServer(t)
	f := newBrowserFetcher(t)

	req := browserRequest(srv.URL + "/hello")
	req.Format = models.FormatText

	result, err := f.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if strings.TrimSpace(result.Text) != "Hello World" {
		t.Errorf("expected body text %q, got %q", "Hello World", result.Text)
	}
}

func TestBrowserFetchJSONBodyText(t *testing.T) {
	srv := newTestServer(t)
	f := newBrowserFetcher(t)

	req := browserRequest(srv.URL + "/json")
	req.Format = models.FormatJSON

	result, err := f.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	// Do extracts the body text; pretty-printing happens in the content
	// package. The rendered text must be the exact JSON literal.
	if strings.TrimSpace(result.Text) != `{"a":1}` {
		t.Errorf("expected body text %q, got %q", `{"a":1}`, result.Text)
	}
}

func TestBrowserFetchNonJSONBodyText(t *testing.T) {
	srv := newTestServer(t)
	f := newBrowserFetcher(t)

	req := browserRequest(srv.URL + "/notjson")
	req.Format = models.FormatJSON

	result, err := f.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if strings.TrimSpace(result.Text) != "not json" {
		t.Errorf("expected body text %q, got %q", "not json", result.Text)
	}
}

func TestBrowserFetchPost(t *testing.T) {
	srv := newTestServer(t)
	f := newBrowserFetcher(t)

	req := browserRequest(srv.URL + "/echo")
	req.Method = "POST"
	req.Data = "key=value"

	result, err := f.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	// The echo endpoint only answers POST; reaching it at all proves the
	// hijack rewrote the navigation request.
	if !strings.Contains(result.HTML, "method=POST") {
		t.Errorf("server did not receive a POST: %q", result.HTML)
	}
	if !strings.Contains(result.HTML, "body=key=value") {
		t.Errorf("server did not receive the body: %q", result.HTML)
	}
}

func TestBrowserScreenshot(t *testing.T) {
	srv := newTestServer(t)
	f := newBrowserFetcher(t)

	req := browserRequest(srv.URL + "/hello")
	req.Screenshot = "out.png"

	result, err := f.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(result.Screenshot) == 0 {
		t.Fatal("expected non-empty screenshot bytes")
	}
	// PNG magic number.
	if !strings.HasPrefix(string(result.Screenshot), "\x89PNG") {
		t.Error("screenshot is not a PNG")
	}
	if result.HTML != "" {
		t.Error("screenshot mode must not extract content")
	}
}

func TestBrowserSelectorTimeout(t *testing.T) {
	srv := newTestServer(t)
	f := newBrowserFetcher(t)

	req := browserRequest(srv.URL + "/hello")
	req.WaitSelector = "#never-appears"
	req.Timeout = 2

	start := time.Now()
	_, err := f.Do(context.Background(), req)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected an error for a selector that never appears")
	}
	var fe *models.FetchError
	if !errors.As(err, &fe) || fe.Code != models.ErrCodeTimeout {
		t.Errorf("expected %s, got %v", models.ErrCodeTimeout, err)
	}
	if elapsed > 8*time.Second {
		t.Errorf("selector wait did not respect the timeout: took %v", elapsed)
	}
}

func TestUnsupportedMethodConsumesNoRequests(t *testing.T) {
	srv := newTestServer(t)

	req := browserRequest(srv.URL + "/hello")
	req.Method = "DELETE"
	req.Defaults()

	err := req.Validate()
	if err == nil {
		t.Fatal("expected validation to reject DELETE")
	}
	if !strings.Contains(err.Error(), "unsupported method: DELETE") {
		t.Errorf("error does not name the method: %v", err)
	}
	if got := srv.requests.Load(); got != 0 {
		t.Errorf("expected zero requests to reach the server, got %d", got)
	}
}
