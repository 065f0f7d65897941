// Package screener walks the paginated screener result grid and
// collects ticker symbols. Pages hold at most 20 rows; the walk is
// bounded by an explicit page range or by the pager's own last-page
// number, and always stops at the first page that yields nothing.
package screener

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/finspider/catalog"
	"github.com/use-agent/finspider/models"
)

const (
	baseURL  = "https://finviz.com/screener.ashx"
	pageSize = 20
)

// PageDriver is the slice of the browser session the walker needs.
type PageDriver interface {
	Open(ctx context.Context, rawURL string) error
	Capture(ctx context.Context) (models.Snapshot, error)
	DismissCookieBanner(ctx context.Context)
}

// Extractor turns a snapshot into a section result.
type Extractor interface {
	Extract(ctx context.Context, snap models.Snapshot, sec catalog.Section) (*models.Result, error)
}

// Walker sweeps screener result pages.
type Walker struct {
	driver PageDriver
	engine Extractor
	logger *slog.Logger
}

// New creates a walker.
func New(driver PageDriver, engine Extractor, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{driver: driver, engine: engine, logger: logger}
}

// PageURL builds the screener URL for one result page. Filter codes are
// joined into the f parameter; page 1 omits the row offset.
func PageURL(codes []string, page int) string {
	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString("?v=111")
	if len(codes) > 0 {
		b.WriteString("&ft=4&f=")
		b.WriteString(strings.Join(codes, ","))
	}
	if page > 1 {
		fmt.Fprintf(&b, "&r=%d", (page-1)*pageSize+1)
	}
	return b.String()
}

// Walk collects tickers from startPage through endPage inclusive. When
// endPage is 0 the pager's last-page number, read from the first
// visited page, bounds the sweep. Tickers already collected survive a
// mid-walk error.
func (w *Walker) Walk(ctx context.Context, filters catalog.ScreenerFilters, startPage, endPage int) ([]string, error) {
	codes, err := filters.Codes()
	if err != nil {
		return nil, err
	}
	if startPage < 1 {
		startPage = 1
	}

	var (
		tickers []string
		seen    = map[string]bool{}
	)
	for page := startPage; endPage == 0 || page <= endPage; page++ {
		if ctx.Err() != nil {
			return tickers, models.NewScrapeError(models.ErrCodeTimeout, "screener walk canceled", ctx.Err())
		}

		pageURL := PageURL(codes, page)
		if err := w.driver.Open(ctx, pageURL); err != nil {
			return tickers, err
		}
		if page == startPage {
			w.driver.DismissCookieBanner(ctx)
		}

		snap, err := w.driver.Capture(ctx)
		if err != nil {
			return tickers, err
		}

		if endPage == 0 {
			if last := lastPage(snap.HTML); last > 0 {
				endPage = last
				w.logger.Info("pager bounds discovered", "last_page", last)
			} else {
				endPage = page
			}
		}

		res, err := w.engine.Extract(ctx, snap, catalog.TickersSection())
		if err != nil {
			return tickers, err
		}
		if len(res.Values) == 0 {
			w.logger.Info("empty screener page, stopping", "page", page)
			break
		}

		added := 0
		for _, t := range res.Values {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			tickers = append(tickers, t)
			added++
		}
		w.logger.Info("screener page collected", "page", page, "tickers", added)

		// A short page is the last one.
		if len(res.Values) < pageSize {
			break
		}
	}
	return tickers, nil
}

var pageLabel = regexp.MustCompile(`(\d+)\s*$`)

// lastPage reads the pager's final page number from a result page. The
// pager renders as a select whose options are labeled "Page N / M".
func lastPage(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	text := doc.Find("#pageSelect option").Last().Text()
	if text == "" {
		return 0
	}
	m := pageLabel.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
