package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"

	"github.com/sharpner/jurl/fetcher"
	"github.com/sharpner/jurl/models"
)

// progress prints curl-style "* ..." lines in cyan on stderr when verbose
// mode is on.
type progress struct {
	enabled bool
	c       *color.Color
}

func newProgress(enabled bool) *progress {
	return &progress{enabled: enabled, c: color.New(color.FgCyan)}
}

func (p *progress) printf(format string, args ...any) {
	if !p.enabled {
		return
	}
	p.c.Fprintf(os.Stderr, format+"\n", args...)
}

// outputOptions carries the flags that shape the final output stage.
type outputOptions struct {
	include bool
	silent  bool
	file    string
}

// writeResult emits the optional -i header block and the body to w, or the
// body to the -o file. Silent mode suppresses the header block, the body and
// the file confirmation alike.
func writeResult(w io.Writer, progress *progress, opts outputOptions, result *fetcher.Result, body string) error {
	if opts.include && !opts.silent {
		printHeaderBlock(w, result, body)
	}

	if opts.file != "" {
		progress.printf("* Writing output to: %s", opts.file)
		if err := os.WriteFile(opts.file, []byte(body), 0o644); err != nil {
			return models.NewFetchError(models.ErrCodeOutput, "failed to write output file", err)
		}
		if !opts.silent {
			fmt.Fprintf(w, "Output saved to: %s\n", opts.file)
		}
		return nil
	}

	if !opts.silent {
		fmt.Fprintln(w, body)
	}
	return nil
}

// writeScreenshot saves the captured PNG and prints the confirmation line.
// Screenshot mode never emits page content.
func writeScreenshot(w io.Writer, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.NewFetchError(models.ErrCodeOutput, "failed to write screenshot", err)
	}
	fmt.Fprintf(w, "Screenshot saved to: %s\n", path)
	return nil
}

// printHeaderBlock emits a curl -i style status and header block before the
// body.
//
// The http engine observed a real response, so its status line and headers
// are printed verbatim. The browser engine has no transport-level visibility
// beyond the Performance-API status code; its Content-Length is computed from
// the extracted content and the Content-Type line is fixed.
func printHeaderBlock(w io.Writer, result *fetcher.Result, body string) {
	green := color.New(color.FgGreen)

	status := result.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = "OK"
	}
	green.Fprintf(w, "HTTP/1.1 %d %s\n", status, statusText)

	if len(result.Headers) > 0 {
		for _, name := range fetcher.SortedHeaderNames(result.Headers) {
			green.Fprintf(w, "%s: %s\n", name, result.Headers[name])
		}
	} else {
		green.Fprintf(w, "Content-Length: %d\n", len(body))
		green.Fprintf(w, "Content-Type: text/html; charset=utf-8\n")
	}
	fmt.Fprintln(w)
}
