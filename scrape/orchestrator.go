// Package scrape sequences quote-page scraping: one browser session per
// run, one navigation per entity, then the requested sections in
// catalog order. A section failure is contained to that section; only a
// failed navigation abandons an entity.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/use-agent/finspider/catalog"
	"github.com/use-agent/finspider/extract"
	"github.com/use-agent/finspider/models"
)

// quoteURL is the entity page template. ty/p/b pin the chart widget to
// its lightest candlestick configuration so page weight stays down.
const quoteURL = "https://finviz.com/quote.ashx?t=%s&ty=c&p=d&b=1"

// Statements widget geography: the YoY toggles and the statement tabs
// live in the same button strip; an active toggle carries the
// highlighted border class.
const (
	statementsControl     = "#statements button, #statements a"
	statementsActiveClass = "border-blue-400"
)

var yoyToggles = []string{"YoY Growth", "YoY Growth %"}

const (
	ownershipControl = "div.managers-and-funds button"
	ownershipRows    = "div.managers-and-funds table tbody tr"
)

// PageDriver is the slice of the browser session the orchestrator
// drives.
type PageDriver interface {
	Open(ctx context.Context, rawURL string) error
	Capture(ctx context.Context) (models.Snapshot, error)
	Center(ctx context.Context, selector string) error
	ClickText(ctx context.Context, selector, text string) error
	EnsureToggled(ctx context.Context, selector, text, activeClass string) (bool, error)
	WaitActive(ctx context.Context, selector, text, activeClass string) error
	WaitVisible(ctx context.Context, selector string) error
	DismissCookieBanner(ctx context.Context)
}

// Extractor turns a snapshot into a section result.
type Extractor interface {
	Extract(ctx context.Context, snap models.Snapshot, sec catalog.Section) (*models.Result, error)
}

// ArtifactSink persists a result and returns its artifact path.
type ArtifactSink interface {
	Save(entity string, res *models.Result) (string, error)
}

// Orchestrator scrapes the requested datasets for each entity.
type Orchestrator struct {
	driver PageDriver
	engine Extractor
	sink   ArtifactSink
	logger *slog.Logger

	// MetricsSubset narrows the metrics dataset to the named metrics.
	// Names are matched loosely (case and punctuation ignored).
	MetricsSubset []string
}

// New creates an orchestrator.
func New(driver PageDriver, engine Extractor, sink ArtifactSink, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{driver: driver, engine: engine, sink: sink, logger: logger}
}

// Run scrapes every entity in order and aggregates the outcomes. The
// run stops early only on context cancellation; entities already
// processed keep their reports.
func (o *Orchestrator) Run(ctx context.Context, tickers []string, datasets []models.Dataset) models.RunReport {
	var report models.RunReport
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			o.logger.Warn("run canceled", "remaining", len(tickers)-len(report.Entities))
			break
		}
		rep := o.ScrapeEntity(ctx, ticker, datasets)
		o.logger.Info("entity finished",
			"ticker", rep.Symbol,
			"persisted", rep.Persisted(),
			"failed", rep.Failed(),
			"fatal", rep.Fatal != nil)
		report.Add(rep)
	}
	return report
}

// ScrapeEntity navigates to one entity's quote page and works through
// the requested sections.
func (o *Orchestrator) ScrapeEntity(ctx context.Context, ticker string, datasets []models.Dataset) models.EntityReport {
	rep := models.EntityReport{Symbol: strings.ToUpper(strings.TrimSpace(ticker))}
	log := o.logger.With("ticker", rep.Symbol)

	pageURL := fmt.Sprintf(quoteURL, url.QueryEscape(rep.Symbol))
	if err := o.driver.Open(ctx, pageURL); err != nil {
		log.Error("quote page navigation failed", "err", err)
		rep.Fatal = err
		return rep
	}
	o.driver.DismissCookieBanner(ctx)

	// Section order follows the catalog so widgets that mutate page
	// state (statements tabs, ownership buttons) run last.
	yoyActivated := false
	for _, sec := range orderedSections(datasets) {
		if ctx.Err() != nil {
			log.Warn("entity canceled", "dataset", sec.Dataset())
			break
		}
		sr := o.scrapeSection(ctx, log, rep.Symbol, sec, &yoyActivated)
		rep.Record(sr)
	}
	return rep
}

func (o *Orchestrator) scrapeSection(ctx context.Context, log *slog.Logger, symbol string, sec catalog.Section, yoyActivated *bool) models.SectionReport {
	dataset := sec.Dataset()
	sr := models.SectionReport{Dataset: dataset}

	fail := func(err error) models.SectionReport {
		log.Warn("section failed", "dataset", dataset, "err", err)
		sr.State = models.SectionFailed
		sr.Reason = err.Error()
		return sr
	}
	skip := func(reason string) models.SectionReport {
		log.Info("section skipped", "dataset", dataset, "reason", reason)
		sr.State = models.SectionSkipped
		sr.Reason = reason
		return sr
	}

	if err := o.prepare(ctx, sec, yoyActivated); err != nil {
		return fail(err)
	}

	snap, err := o.driver.Capture(ctx)
	if err != nil {
		return fail(err)
	}

	res, err := o.engine.Extract(ctx, snap, sec)
	if err != nil {
		if errors.Is(err, extract.ErrWidgetAbsent) {
			return skip("widget not present on page")
		}
		return fail(err)
	}

	if dataset == models.DatasetMetrics && len(o.MetricsSubset) > 0 {
		filterMetrics(res, o.MetricsSubset)
	}
	if res.Empty() {
		return skip("extracted no data")
	}

	artifact, err := o.sink.Save(symbol, res)
	if err != nil {
		return fail(err)
	}

	log.Info("section persisted", "dataset", dataset, "rows", res.RowCount(), "artifact", artifact)
	sr.State = models.SectionPersisted
	sr.Artifact = artifact
	return sr
}

// prepare runs the interaction sequence that brings the section's
// widget into a capturable state.
func (o *Orchestrator) prepare(ctx context.Context, sec catalog.Section, yoyActivated *bool) error {
	if err := o.driver.Center(ctx, sec.Anchor); err != nil {
		return err
	}

	switch sec.Widget {
	case catalog.WidgetStatements:
		if !*yoyActivated {
			for _, toggle := range yoyToggles {
				if _, err := o.driver.EnsureToggled(ctx, statementsControl, toggle, statementsActiveClass); err != nil {
					return err
				}
			}
			*yoyActivated = true
		}
		// The previous tab's table still matches sec.Fragment while the
		// swap is in flight, so wait for the clicked tab to turn active
		// before trusting anything on the page.
		if err := o.driver.ClickText(ctx, statementsControl, sec.Tab); err != nil {
			return err
		}
		if err := o.driver.WaitActive(ctx, statementsControl, sec.Tab, statementsActiveClass); err != nil {
			return err
		}
		return o.driver.WaitVisible(ctx, sec.Fragment)

	case catalog.WidgetOwnership:
		if err := o.driver.ClickText(ctx, ownershipControl, sec.Button); err != nil {
			return err
		}
		// The holder table repopulates in place; wait for rows, not just
		// the table shell.
		return o.driver.WaitVisible(ctx, ownershipRows)
	}
	return nil
}

// orderedSections resolves the requested datasets to catalog sections,
// preserving catalog order regardless of request order.
func orderedSections(datasets []models.Dataset) []catalog.Section {
	requested := make(map[models.Dataset]bool, len(datasets))
	for _, d := range datasets {
		requested[d] = true
	}
	var out []catalog.Section
	for _, sec := range catalog.Sections() {
		if requested[sec.Dataset()] {
			out = append(out, sec)
		}
	}
	return out
}

var metricNameJunk = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeMetric(name string) string {
	return metricNameJunk.ReplaceAllString(strings.ToLower(name), "")
}

// filterMetrics narrows a metrics result to the requested subset,
// keeping page order.
func filterMetrics(res *models.Result, subset []string) {
	want := make(map[string]bool, len(subset)+1)
	for _, s := range subset {
		want[normalizeMetric(s)] = true
	}
	// The capture timestamp travels with the artifact regardless of the
	// requested subset.
	want[normalizeMetric("extracted_at")] = true
	kept := res.Rows[:0]
	for _, row := range res.Rows {
		if len(row) > 0 && want[normalizeMetric(row[0])] {
			kept = append(kept, row)
		}
	}
	res.Rows = kept
}
