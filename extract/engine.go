// Package extract turns raw page snapshots into validated structured
// results. A snapshot is reduced to the section's widget fragment,
// converted to markdown, and handed to the text-understanding service
// together with a schema-derived instruction; the reply is parsed and
// validated against the schema before anything leaves the package.
//
// Statement tables are the exception: their column set varies per
// ticker and their markup is regular, so they are parsed directly from
// the DOM without a service call.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/use-agent/finspider/catalog"
	"github.com/use-agent/finspider/cleaner"
	"github.com/use-agent/finspider/models"
)

// ErrWidgetAbsent reports that the section's widget does not exist in
// the captured page. Not every ticker has every widget (ETFs have no
// income statement, stocks have no holdings breakdown), so callers
// treat this as a skip, not a failure.
var ErrWidgetAbsent = errors.New("section widget not present in page")

// contentTokenWarn is the reduced-content size above which a warning is
// logged; oversized fragments inflate cost and degrade reply quality.
const contentTokenWarn = 24000

// Completer is the slice of the service client the engine needs.
type Completer interface {
	Complete(ctx context.Context, instruction string, wantJSON bool) (string, error)
}

// Engine extracts structured results from page snapshots.
type Engine struct {
	client Completer
	conv   *converter.Converter
	policy RetryPolicy
	logger *slog.Logger

	now func() time.Time
}

// NewEngine creates an extraction engine.
func NewEngine(client Completer, policy RetryPolicy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client: client,
		conv:   cleaner.NewMarkdownConverter(),
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Extract produces the section's result from a snapshot. It returns
// ErrWidgetAbsent when the page has no matching widget, and an
// EXTRACTION_FAILED error once retries are exhausted.
func (e *Engine) Extract(ctx context.Context, snap models.Snapshot, sec catalog.Section) (*models.Result, error) {
	fragment, found, err := cleaner.Isolate(snap.HTML, sec.Fragment)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			fmt.Sprintf("isolating %q for dataset %s", sec.Fragment, sec.Dataset()), err)
	}
	if !found {
		return nil, ErrWidgetAbsent
	}

	if sec.Widget == catalog.WidgetStatements {
		return e.extractStatements(fragment, sec.Schema)
	}
	return e.extractWithService(ctx, snap, fragment, sec.Schema)
}

// extractStatements parses a statements table straight from the DOM.
// The column set (fiscal periods) differs per ticker, so the result
// carries whatever header the page shows, with the capture timestamp
// inserted as the second column.
func (e *Engine) extractStatements(fragment string, desc models.SchemaDescriptor) (*models.Result, error) {
	columns, rows, err := cleaner.StatementTable(fragment)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			fmt.Sprintf("parsing statements table for dataset %s", desc.Dataset), err)
	}

	now := e.now()
	stamp := now.Format("2006-01-02 15:04:05")

	withStamp := make([]string, 0, len(columns)+1)
	withStamp = append(withStamp, columns[0], "extracted_at")
	withStamp = append(withStamp, columns[1:]...)
	for i, row := range rows {
		stamped := make([]string, 0, len(row)+1)
		stamped = append(stamped, row[0], stamp)
		stamped = append(stamped, row[1:]...)
		rows[i] = stamped
	}

	return &models.Result{
		Dataset:     desc.Dataset,
		Shape:       desc.Shape,
		Columns:     withStamp,
		Rows:        rows,
		ExtractedAt: now,
	}, nil
}

// extractWithService runs the reduce -> instruct -> complete -> parse
// loop with bounded retries. Parse and validation failures count as
// retryable: the service is nondeterministic enough that a second
// attempt often yields a conforming reply.
func (e *Engine) extractWithService(ctx context.Context, snap models.Snapshot, fragment string, desc models.SchemaDescriptor) (*models.Result, error) {
	content, err := e.reduce(snap, fragment, desc.Shape)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			fmt.Sprintf("reducing fragment for dataset %s", desc.Dataset), err)
	}
	if tokens := cleaner.EstimateTokens(content); tokens > contentTokenWarn {
		e.logger.Warn("reduced content is unusually large",
			"dataset", desc.Dataset, "approx_tokens", tokens)
	}

	instruction := buildInstruction(desc, content)
	wantJSON := desc.Shape != models.ShapeText

	var lastErr error
	for attempt := 0; attempt < e.policy.Attempts; attempt++ {
		if attempt > 0 {
			delay := e.policy.Backoff(attempt - 1)
			e.logger.Debug("retrying extraction",
				"dataset", desc.Dataset, "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, models.NewScrapeError(models.ErrCodeTimeout,
					fmt.Sprintf("extraction canceled for dataset %s", desc.Dataset), ctx.Err())
			case <-time.After(delay):
			}
		}

		raw, err := e.client.Complete(ctx, instruction, wantJSON)
		if err != nil {
			if !models.Retryable(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		result, err := e.parse(raw, desc)
		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}

	return nil, models.NewScrapeError(models.ErrCodeExtraction,
		fmt.Sprintf("dataset %s failed after %d attempts", desc.Dataset, e.policy.Attempts), lastErr)
}

// reduce converts the isolated fragment to the representation sent to
// the service: plain text for free-text sections, markdown otherwise.
func (e *Engine) reduce(snap models.Snapshot, fragment string, shape models.Shape) (string, error) {
	if shape == models.ShapeText {
		return cleaner.Text(fragment), nil
	}
	domain := ""
	if u, err := url.Parse(snap.URL); err == nil {
		domain = u.Scheme + "://" + u.Host
	}
	return cleaner.ToMarkdown(e.conv, fragment, domain)
}

// parse validates the service reply against the descriptor and builds
// the tagged result.
func (e *Engine) parse(raw string, desc models.SchemaDescriptor) (*models.Result, error) {
	result := &models.Result{
		Dataset:     desc.Dataset,
		Shape:       desc.Shape,
		ExtractedAt: e.now(),
	}

	switch desc.Shape {
	case models.ShapeTable:
		rows, err := parseTableReply(raw, desc.Fields)
		if err != nil {
			return nil, err
		}
		result.Columns = append([]string(nil), desc.Fields...)
		result.Rows = rows

	case models.ShapeObject:
		rows, err := parseObjectReply(raw)
		if err != nil {
			return nil, err
		}
		result.Columns = append([]string(nil), desc.Fields...)
		// Artifacts carry their own capture time like statement tables
		// do, appended as a final pair so page order stays intact.
		rows = append(rows, []string{"extracted_at", result.ExtractedAt.Format("2006-01-02 15:04:05")})
		result.Rows = rows

	case models.ShapeList:
		values, err := parseListReply(raw)
		if err != nil {
			return nil, err
		}
		result.Values = values

	case models.ShapeText:
		result.Text = stripFences(raw)

	default:
		return nil, fmt.Errorf("unknown result shape %q", desc.Shape)
	}

	return result, nil
}
