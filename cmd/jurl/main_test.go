package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// newPageServer starts a local page server so the CLI can be driven end to
// end through the http engine, without a browser.
func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/hello", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte("<html><body><h1>Hello World</h1></body></html>"))
	})
	r.GET("/json", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte(`<html><body>{"a":1}</body></html>`))
	})
	r.GET("/notjson", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte("<html><body>not json</body></html>"))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// resetFlags restores all flag variables to their defaults. Flag values stick
// to the package-level vars between Execute calls, so every test run starts
// from a clean slate.
func resetFlags() {
	flagMethod = "GET"
	flagInclude = false
	flagVerbose = false
	flagLocation = false
	flagOutput = ""
	flagHeaders = nil
	flagData = ""
	flagWaitSelector = ""
	flagTimeout = 30
	flagScreenshot = ""
	flagFormat = "html"
	flagSilent = false
	flagUserAgent = ""
	flagEngine = "browser"
	flagStealth = false
	flagSelect = ""
}

// execJurl runs the root command with args and returns captured stdout.
func execJurl(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("jurl %v failed: %v", args, err)
	}
	return out.String()
}

func TestCLISilentWithIncludePrintsNothing(t *testing.T) {
	srv := newPageServer(t)

	out := execJurl(t, srv.URL+"/hello", "--engine", "http", "-i", "-s")
	if out != "" {
		t.Errorf("-i combined with -s must print nothing, got %q", out)
	}
}

func TestCLIIncludePrintsHeaderBlock(t *testing.T) {
	srv := newPageServer(t)

	out := execJurl(t, srv.URL+"/hello", "--engine", "http", "-i")
	if !strings.Contains(out, "HTTP/1.1 200 OK") {
		t.Errorf("missing status line: %q", out)
	}
	if !strings.Contains(out, "Hello World") {
		t.Errorf("missing body after header block: %q", out)
	}
}

func TestCLIJSONFormatPrettyPrints(t *testing.T) {
	srv := newPageServer(t)

	out := execJurl(t, srv.URL+"/json", "--engine", "http", "--format", "json")
	if !strings.Contains(out, "{\n  \"a\": 1\n}") {
		t.Errorf("expected pretty-printed JSON, got %q", out)
	}
}

func TestCLIJSONFormatFallsBackToRawText(t *testing.T) {
	srv := newPageServer(t)

	out := execJurl(t, srv.URL+"/notjson", "--engine", "http", "--format", "json")
	if strings.TrimSpace(out) != "not json" {
		t.Errorf("malformed json must degrade to raw text, got %q", out)
	}
}

func TestCLIRejectsUnsupportedMethod(t *testing.T) {
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"https://example.com", "-X", "DELETE"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected DELETE to be rejected")
	}
	if !strings.Contains(err.Error(), "unsupported method: DELETE") {
		t.Errorf("error must name the method: %v", err)
	}
}
