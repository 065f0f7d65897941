package models

import "time"

// Dataset identifies one extractable section of a quote page (or one of
// the auxiliary extraction targets).
type Dataset string

const (
	DatasetMetrics     Dataset = "metrics"
	DatasetInsiders    Dataset = "insiders"
	DatasetInfo        Dataset = "info"
	DatasetManagers    Dataset = "managers"
	DatasetFunds       Dataset = "funds"
	DatasetRatings     Dataset = "ratings"
	DatasetNews        Dataset = "news"
	DatasetIncome      Dataset = "income"
	DatasetBalance     Dataset = "balance"
	DatasetCash        Dataset = "cash"
	DatasetHoldingsBD  Dataset = "holdings_breakdown"
	DatasetTop10       Dataset = "top10_holdings"
	DatasetTickers     Dataset = "tickers"
	DatasetPatentCount Dataset = "patent_count"
)

// Shape describes the expected structure of an extraction result.
type Shape string

const (
	// ShapeTable expects a JSON array of objects whose keys match the
	// descriptor's Fields exactly.
	ShapeTable Shape = "table"

	// ShapeObject expects a single JSON object of string pairs
	// (e.g. the snapshot metrics table). Results are flattened into
	// ordered two-column rows.
	ShapeObject Shape = "object"

	// ShapeList expects a JSON array of strings (e.g. ticker symbols).
	ShapeList Shape = "list"

	// ShapeText expects free text, verbatim.
	ShapeText Shape = "text"
)

// SchemaDescriptor declares, as data, what a section's extraction must
// produce. Adding a dataset kind means adding a descriptor, not code.
type SchemaDescriptor struct {
	Dataset Dataset
	Shape   Shape

	// Fields is the exact expected key set for ShapeTable results,
	// and the column names used when flattening ShapeObject results.
	Fields []string

	// Hint is a one-line description of the on-page widget, embedded in
	// the extraction instruction.
	Hint string
}

// Snapshot is raw page content captured at one point in an interaction
// sequence. It is ephemeral and never persisted directly.
type Snapshot struct {
	URL        string
	HTML       string
	CapturedAt time.Time
}

// Result is a validated structured payload tagged with the section it
// belongs to. Exactly one of Rows/Values/Text is populated, depending
// on the descriptor's shape (ShapeObject results are flattened to Rows).
type Result struct {
	Dataset Dataset
	Shape   Shape

	Columns []string
	Rows    [][]string

	Values []string // ShapeList
	Text   string   // ShapeText

	ExtractedAt time.Time
}

// RowCount returns the number of data rows (or values) in the result.
func (r *Result) RowCount() int {
	switch r.Shape {
	case ShapeList:
		return len(r.Values)
	case ShapeText:
		if r.Text == "" {
			return 0
		}
		return 1
	default:
		return len(r.Rows)
	}
}

// Empty reports whether the result carries no data at all.
func (r *Result) Empty() bool {
	return r.RowCount() == 0
}
