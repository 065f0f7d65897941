package cleaner

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoStatementRows is returned when the statements fragment parses but
// contains no usable data rows.
var ErrNoStatementRows = errors.New("statements table has no data rows")

// StatementTable parses the large financial-statements table
// deterministically, without the extraction service. The table embeds a
// miniature chart cell after the metric name (column index 1) and inline
// SVG sparklines; both are dropped. The first surviving row is the
// period header, with its leading cell renamed to "Metric".
func StatementTable(fragment string) (columns []string, rows [][]string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, nil, err
	}

	doc.Find("svg").Remove()

	var all [][]string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		var cells []string
		tds.Each(func(i int, td *goquery.Selection) {
			if i == 1 {
				return // chart cell
			}
			cells = append(cells, strings.Join(strings.Fields(td.Text()), " "))
		})
		if len(cells) > 2 {
			all = append(all, cells)
		}
	})

	if len(all) < 2 {
		return nil, nil, ErrNoStatementRows
	}

	columns = all[0]
	columns[0] = "Metric"
	rows = all[1:]

	// Ragged rows would silently shift values under the wrong period.
	for _, row := range rows {
		if len(row) != len(columns) {
			return nil, nil, errors.New("statements table row width does not match header")
		}
	}
	return columns, rows, nil
}
