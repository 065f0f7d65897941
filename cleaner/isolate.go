// Package cleaner is the deterministic markup layer of the extraction
// pipeline: it isolates the widget a section cares about from a full
// page snapshot and reduces it to a form the text-understanding service
// can digest cheaply. Everything here is pure (same input, same output)
// so extraction retries always operate on identical content.
package cleaner

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Isolate parses rawHTML, matches elements against the given CSS
// selector, and returns the concatenated outer HTML of all matched
// elements. found is false when nothing matched, which callers treat
// as "widget absent on this page" rather than an error.
func Isolate(rawHTML, selector string) (fragment string, found bool, err error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", false, err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false, err
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return "", false, nil
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", false, err
		}
	}
	return buf.String(), true, nil
}
