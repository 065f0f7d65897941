package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text extracts the visible text of an HTML fragment, collapsing runs of
// whitespace to single spaces. Used for free-text sections where the
// service should see prose, not markup.
func Text(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
