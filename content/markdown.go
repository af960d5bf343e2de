package content

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	readability "github.com/go-shiori/go-readability"
	"github.com/sharpner/jurl/models"
)

// minArticleChars is the smallest readability text extract that counts as a
// located article. Shorter extracts usually mean the algorithm latched onto a
// nav bar or footer, so the whole page is converted instead.
const minArticleChars = 50

// newConverter builds the converter backing --format markdown. The base
// plugin strips script/style/head noise, commonmark renders the standard
// Markdown constructs, and the table plugin keeps tabular pages readable
// in a terminal.
func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// renderMarkdown converts the fetched page to Markdown: isolate the main
// content, then convert it with relative links resolved against the page's
// origin so the output stands alone.
func (r *Renderer) renderMarkdown(rawHTML, sourceURL string) (string, error) {
	pageURL, err := url.Parse(sourceURL)
	if err != nil {
		pageURL = nil
	}

	origin := ""
	if pageURL != nil && pageURL.Host != "" {
		origin = pageURL.Scheme + "://" + pageURL.Host
	}

	md, err := r.conv.ConvertString(mainContent(rawHTML, pageURL), converter.WithDomain(origin))
	if err != nil {
		return "", models.NewFetchError(models.ErrCodeExtraction,
			"markdown conversion failed", err)
	}
	return md, nil
}

// mainContent runs the Mozilla Readability algorithm to isolate the article
// body. Conversion must never fail just because readability choked, so any
// miss (error, nil URL, extract below minArticleChars) degrades to the full
// page markup.
func mainContent(rawHTML string, pageURL *url.URL) string {
	if pageURL == nil {
		return rawHTML
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil || len(strings.TrimSpace(article.TextContent)) < minArticleChars {
		slog.Debug("readability found no usable article, converting full page",
			"url", pageURL.String(), "error", err,
		)
		return rawHTML
	}
	return article.Content
}
