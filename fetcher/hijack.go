package fetcher

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// mountPostHijack installs a request interceptor that rewrites the first
// top-level document request into a POST carrying body. Subsequent document
// requests (redirects after the POST) and all subresource requests pass
// through untouched.
//
// Content-Type defaults to application/x-www-form-urlencoded when the caller
// supplied none, matching curl -d semantics.
//
// Returns the running HijackRouter so the caller can defer router.Stop().
func mountPostHijack(page *rod.Page, body string, headers map[string]string) *rod.HijackRouter {
	router := page.HijackRequests()

	// Handlers run sequentially on the router's goroutine, so a plain bool
	// is enough to mark the navigation request as consumed.
	posted := false

	_ = router.Add("*", proto.NetworkResourceTypeDocument, func(ctx *rod.Hijack) {
		if posted {
			ctx.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		posted = true

		// Carry the request's existing headers; FetchContinueRequest.Headers
		// replaces the whole set when present.
		reqHeaders := ctx.Request.Req().Header
		entries := make([]*proto.FetchHeaderEntry, 0, len(reqHeaders)+1)
		hasContentType := false
		for name, values := range reqHeaders {
			if strings.EqualFold(name, "Content-Type") {
				hasContentType = true
			}
			for _, v := range values {
				entries = append(entries, &proto.FetchHeaderEntry{Name: name, Value: v})
			}
		}
		if !hasContentType {
			if ct, ok := headerValue(headers, "Content-Type"); ok {
				entries = append(entries, &proto.FetchHeaderEntry{Name: "Content-Type", Value: ct})
			} else {
				entries = append(entries, &proto.FetchHeaderEntry{
					Name:  "Content-Type",
					Value: "application/x-www-form-urlencoded",
				})
			}
		}

		ctx.ContinueRequest(&proto.FetchContinueRequest{
			Method:   "POST",
			PostData: []byte(body),
			Headers:  entries,
		})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	// It will exit when router.Stop() is called.
	go router.Run()

	return router
}

// headerValue does a case-insensitive lookup in a plain header map.
func headerValue(headers map[string]string, name string) (string, bool) {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
