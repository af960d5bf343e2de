package fetcher

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
)

// testServer wraps a local gin-routed page server with a request counter.
type testServer struct {
	*httptest.Server
	requests atomic.Int64
}

// newTestServer starts a local page server with fixtures for every
// extraction mode plus POST and redirect endpoints.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ts.requests.Add(1)
		c.Next()
	})

	r.GET("/hello", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte("<html><head><title>hello</title></head><body><h1>Hello World</h1></body></html>"))
	})

	r.GET("/json", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte(`<html><body>{"a":1}</body></html>`))
	})

	r.GET("/notjson", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte("<html><body>not json</body></html>"))
	})

	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte("<html><body>method="+c.Request.Method+
				" ct="+c.GetHeader("Content-Type")+
				" body="+string(body)+"</body></html>"))
	})

	r.GET("/headers", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			[]byte("<html><body>x-test="+c.GetHeader("X-Test")+"</body></html>"))
	})

	r.GET("/redirect", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/hello")
	})

	ts.Server = httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}
