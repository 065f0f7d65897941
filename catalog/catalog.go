// Package catalog is the static description of everything the pipeline
// knows how to extract: which datasets exist on a quote page, what shape
// each one has, which on-page widget holds it, and which screener filter
// slugs translate to which site filter codes.
//
// Adding a dataset kind means adding a Section here; the extraction
// engine and the orchestrator are driven entirely by this data.
package catalog

import "github.com/use-agent/finspider/models"

// Widget tags the interaction sequence a section needs before capture.
type Widget string

const (
	// WidgetNone: scroll the anchor into view, capture the page.
	WidgetNone Widget = ""

	// WidgetStatements: activate the YoY growth toggles once per page,
	// click the statement tab, then capture.
	WidgetStatements Widget = "statements"

	// WidgetOwnership: click the named view button inside the
	// managers-and-funds widget, then capture the widget table.
	WidgetOwnership Widget = "ownership"
)

// Section couples a schema descriptor with the page geography needed to
// reach its data.
type Section struct {
	Schema models.SchemaDescriptor

	// Anchor is scrolled into view (centered) before capture.
	Anchor string

	// Fragment isolates the section's widget within a page snapshot.
	Fragment string

	Widget Widget

	// Tab is the statements tab label (WidgetStatements only).
	Tab string

	// Button is the view button label (WidgetOwnership only).
	Button string
}

// Dataset returns the section's dataset kind.
func (s Section) Dataset() models.Dataset { return s.Schema.Dataset }

var sections = []Section{
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetMetrics,
			Shape:   models.ShapeObject,
			Fields:  []string{"metric", "value"},
			Hint:    "snapshot table of valuation, performance and technical metrics; extract EVERY metric/value pair",
		},
		Anchor:   "table.snapshot-table2",
		Fragment: "table.snapshot-table2",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetInsiders,
			Shape:   models.ShapeTable,
			Fields: []string{
				"insider", "relationship", "date", "transaction",
				"cost", "shares", "value", "shares_total", "sec_form",
			},
			Hint: "insider-trading table; extract ALL visible rows",
		},
		Anchor:   "table.body-table",
		Fragment: "table.body-table",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetInfo,
			Shape:   models.ShapeText,
			Hint:    "company profile paragraph; return ONLY its plain-text contents, no extra words",
		},
		Anchor:   "div.quote_profile-bio",
		Fragment: "div.quote_profile-bio",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetRatings,
			Shape:   models.ShapeTable,
			Fields:  []string{"date", "action", "analyst", "rating_change", "price_target_change"},
			Hint:    "analyst-ratings table; extract ALL visible rows",
		},
		Anchor:   "table.js-table-ratings",
		Fragment: "table.js-table-ratings",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetNews,
			Shape:   models.ShapeTable,
			Fields:  []string{"datetime", "headline", "source", "url"},
			Hint:    "headline-news table; extract EVERY visible row",
		},
		Anchor:   "#news-table",
		Fragment: "#news-table",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetHoldingsBD,
			Shape:   models.ShapeTable,
			Fields:  []string{"category", "percent"},
			Hint:    "ETF holdings-breakdown widget; extract EVERY category with its percentage",
		},
		Anchor:   "div[data-testid^='etf-holdings-bd-']",
		Fragment: "div[data-testid^='etf-holdings-bd-']",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetTop10,
			Shape:   models.ShapeTable,
			Fields:  []string{"name", "percent", "sector"},
			Hint:    "ETF top-10 holdings table; extract EVERY row",
		},
		Anchor:   "div[data-testid^='etf-holdings-tt-table']",
		Fragment: "div[data-testid^='etf-holdings-tt-table']",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetIncome,
			Shape:   models.ShapeTable,
			Hint:    "income statement, year-over-year view",
		},
		Anchor:   "#statements",
		Fragment: "table[data-testid='quote-statements-table']",
		Widget:   WidgetStatements,
		Tab:      "Income Statement",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetBalance,
			Shape:   models.ShapeTable,
			Hint:    "balance sheet, year-over-year view",
		},
		Anchor:   "#statements",
		Fragment: "table[data-testid='quote-statements-table']",
		Widget:   WidgetStatements,
		Tab:      "Balance Sheet",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetCash,
			Shape:   models.ShapeTable,
			Hint:    "cash flow statement, year-over-year view",
		},
		Anchor:   "#statements",
		Fragment: "table[data-testid='quote-statements-table']",
		Widget:   WidgetStatements,
		Tab:      "Cash Flow",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetFunds,
			Shape:   models.ShapeTable,
			Fields:  []string{"name", "percent"},
			Hint:    "two-column table of funds (name + %); extract EVERY row",
		},
		Anchor:   "div.managers-and-funds",
		Fragment: "div.managers-and-funds table",
		Widget:   WidgetOwnership,
		Button:   "Funds",
	},
	{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetManagers,
			Shape:   models.ShapeTable,
			Fields:  []string{"name", "percent"},
			Hint:    "two-column table of institutional managers (name + %); extract EVERY row",
		},
		Anchor:   "div.managers-and-funds",
		Fragment: "div.managers-and-funds table",
		Widget:   WidgetOwnership,
		Button:   "Managers",
	},
}

// Sections returns the quote-page sections in extraction order. The
// order matters: plain widgets first, then the statements widget (which
// mutates page state via its toggles and tabs), then the ownership
// widget (which swaps the visible table).
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// SectionFor looks up the section for a dataset kind.
func SectionFor(d models.Dataset) (Section, bool) {
	for _, s := range sections {
		if s.Schema.Dataset == d {
			return s, true
		}
	}
	return Section{}, false
}

// TickersSection describes the screener result grid.
func TickersSection() Section {
	return Section{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetTickers,
			Shape:   models.ShapeList,
			Hint:    "screener result table; extract ALL ticker symbols visible in its body rows",
		},
		Fragment: "table.screener_table",
	}
}

// PatentCountSection describes the patent-search result counter.
func PatentCountSection() Section {
	return Section{
		Schema: models.SchemaDescriptor{
			Dataset: models.DatasetPatentCount,
			Shape:   models.ShapeText,
			Hint:    "total results counter (e.g. \"More than 100,000 results\"); return ONLY the visible phrase, do not add or remove words",
		},
		Fragment: "div#count",
	}
}
