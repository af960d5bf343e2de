// Package content turns a fetched page into the requested output format.
package content

import (
	"encoding/json"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/sharpner/jurl/fetcher"
	"github.com/sharpner/jurl/models"
)

// Renderer dispatches on the requested output format. The markdown converter
// is built once and reused across calls.
type Renderer struct {
	conv *converter.Converter
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{conv: newConverter()}
}

// Render produces the output body for the request from a fetch result.
//
// The --select selector applies to html and markdown output only; text and
// json work on the visible body text, which has no element structure left to
// select against.
func (r *Renderer) Render(req *models.FetchRequest, res *fetcher.Result) (string, error) {
	rawHTML := res.HTML
	if req.Selector != "" && (req.Format == models.FormatHTML || req.Format == models.FormatMarkdown) {
		selected, err := selectFragment(rawHTML, req.Selector)
		if err != nil {
			return "", models.NewFetchError(models.ErrCodeInvalidInput,
				"invalid --select selector", err)
		}
		rawHTML = selected
	}

	switch req.Format {
	case models.FormatHTML:
		return rawHTML, nil

	case models.FormatText:
		return res.Text, nil

	case models.FormatJSON:
		return PrettyJSON(res.Text), nil

	case models.FormatMarkdown:
		return r.renderMarkdown(rawHTML, res.FinalURL)

	default:
		return "", models.NewFetchError(models.ErrCodeInvalidInput,
			"unsupported format: "+req.Format, nil)
	}
}

// PrettyJSON re-indents text when it parses as JSON and returns it unchanged
// when it does not. Malformed JSON is a best-effort fallback, not an error.
func PrettyJSON(text string) string {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return text
	}
	return string(out)
}
