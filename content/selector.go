package content

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// selectFragment narrows rawHTML to the elements matching the --select CSS
// selector, one rendered element per line.
//
// A selector that matches nothing returns the full document: --select narrows
// the output, it never empties it. A selector that does not parse is an
// input error, since silently ignoring a typo would hand the user the whole
// page as if the selection had worked.
func selectFragment(rawHTML string, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", err
	}

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, node := range cascadia.QueryAll(root, sel) {
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := html.Render(&b, node); err != nil {
			return "", err
		}
	}
	if b.Len() == 0 {
		return rawHTML, nil
	}
	return b.String(), nil
}
