// Package patents counts search results on the patent-search site for
// an assignee, optionally narrowed to a filing-date range via the
// site's refinement drawer.
package patents

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/finspider/catalog"
	"github.com/use-agent/finspider/models"
)

const searchURL = "https://patents.google.com/?assignee=%s&oq=%s"

// Refinement drawer geography.
const (
	compactQuery   = "span#compactQuery"
	dateDropdown   = "dropdown-menu[label='Date'] iron-icon"
	dateTypeItem   = "div.item"
	dateTypeFiling = "Filing"
	afterInput     = "input#after"
	beforeInput    = "input#before"
	countBadge     = "div#count"
)

// PageDriver is the slice of the browser session the counter needs.
type PageDriver interface {
	Open(ctx context.Context, rawURL string) error
	Capture(ctx context.Context) (models.Snapshot, error)
	Click(ctx context.Context, selector string) error
	ClickText(ctx context.Context, selector, text string) error
	Fill(ctx context.Context, selector, text string) error
	PressEnter(ctx context.Context, selector string) error
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

// DateRange bounds the filing date, both ends inclusive, "YYYY-MM-DD".
type DateRange struct {
	After  string
	Before string
}

// Validate checks both bounds parse and are ordered.
func (r DateRange) Validate() error {
	after, err := time.Parse("2006-01-02", r.After)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeConfiguration,
			"after date must be YYYY-MM-DD, got "+r.After, err)
	}
	before, err := time.Parse("2006-01-02", r.Before)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeConfiguration,
			"before date must be YYYY-MM-DD, got "+r.Before, err)
	}
	if before.Before(after) {
		return models.NewScrapeError(models.ErrCodeConfiguration,
			fmt.Sprintf("date range is inverted: %s..%s", r.After, r.Before), nil)
	}
	return nil
}

// Count is the outcome of one assignee search.
type Count struct {
	Assignee string
	Phrase   string // verbatim counter text, e.g. "More than 10,000 results"
	Total    int64
	// Approximate is set when the site reports a bound, not an exact
	// count ("More than ...", "About ...").
	Approximate bool
	CountedAt   time.Time
}

// Counter runs assignee searches.
type Counter struct {
	driver PageDriver
	engine Extractor
	logger *slog.Logger

	// Sink, when set, persists each count as a text artifact under the
	// assignee's entity directory.
	Sink ArtifactSink
}

// New creates a counter.
func New(driver PageDriver, engine Extractor, logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{driver: driver, engine: engine, logger: logger}
}

// SearchURL builds the assignee search URL. Terms are joined with '+'
// the way the site's own search box does.
func SearchURL(assignee string) string {
	q := strings.Join(strings.Fields(assignee), "+")
	return fmt.Sprintf(searchURL, q, q)
}

// Run searches for the assignee and reads the result counter. A nil
// dates range means no refinement drawer interaction at all.
func (c *Counter) Run(ctx context.Context, assignee string, dates *DateRange) (*Count, error) {
	if dates != nil {
		if err := dates.Validate(); err != nil {
			return nil, err
		}
	}

	log := c.logger.With("assignee", assignee)
	if err := c.driver.Open(ctx, SearchURL(assignee)); err != nil {
		return nil, err
	}
	c.driver.DismissCookieBanner(ctx)

	if dates != nil {
		if err := c.applyDateRange(ctx, *dates); err != nil {
			return nil, err
		}
	}
	if err := c.driver.WaitVisible(ctx, countBadge); err != nil {
		return nil, err
	}

	snap, err := c.driver.Capture(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.engine.Extract(ctx, snap, catalog.PatentCountSection())
	if err != nil {
		return nil, err
	}

	count, err := parseCount(res.Text)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			"unreadable result counter for assignee "+assignee, err)
	}
	count.Assignee = assignee
	count.CountedAt = res.ExtractedAt
	log.Info("patent count read", "total", count.Total, "approximate", count.Approximate)

	if c.Sink != nil {
		artifact, err := c.Sink.Save(entityName(assignee), res)
		if err != nil {
			return count, err
		}
		log.Info("patent count persisted", "artifact", artifact)
	}
	return count, nil
}

// applyDateRange drives the refinement drawer: open the query editor,
// pick the Filing date type, then commit both bounds.
func (c *Counter) applyDateRange(ctx context.Context, dates DateRange) error {
	if err := c.driver.Click(ctx, compactQuery); err != nil {
		return err
	}
	if err := c.driver.Click(ctx, dateDropdown); err != nil {
		return err
	}
	if err := c.driver.ClickText(ctx, dateTypeItem, dateTypeFiling); err != nil {
		return err
	}
	for _, bound := range []struct{ sel, val string }{
		{afterInput, dates.After},
		{beforeInput, dates.Before},
	} {
		if err := c.driver.Fill(ctx, bound.sel, bound.val); err != nil {
			return err
		}
		if err := c.driver.PressEnter(ctx, bound.sel); err != nil {
			return err
		}
	}
	return nil
}

// entityName flattens an assignee name into a directory-safe entity.
func entityName(assignee string) string {
	return strings.Join(strings.Fields(assignee), "_")
}

var countNumber = regexp.MustCompile(`[\d][\d,.]*`)

// parseCount reads the numeric total out of the counter phrase.
func parseCount(phrase string) (*Count, error) {
	phrase = strings.TrimSpace(phrase)
	m := countNumber.FindString(phrase)
	if m == "" {
		return nil, fmt.Errorf("no number in %q", phrase)
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m)
	total, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(phrase)
	return &Count{
		Phrase:      phrase,
		Total:       total,
		Approximate: strings.Contains(lower, "more than") || strings.Contains(lower, "about"),
	}, nil
}
