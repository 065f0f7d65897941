package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/finspider/catalog"
	"github.com/use-agent/finspider/models"
)

// fakeCompleter replays canned replies (or errors) in order.
type fakeCompleter struct {
	replies []reply
	calls   int
}

type reply struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, _ bool) (string, error) {
	if f.calls >= len(f.replies) {
		return "", errors.New("fakeCompleter: no more replies")
	}
	r := f.replies[f.calls]
	f.calls++
	return r.text, r.err
}

func newTestEngine(c Completer, attempts int) *Engine {
	e := NewEngine(c, ZeroDelayPolicy(attempts), nil)
	e.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return e
}

func ratingsSection(t *testing.T) catalog.Section {
	t.Helper()
	sec, ok := catalog.SectionFor(models.DatasetRatings)
	require.True(t, ok)
	return sec
}

const ratingsHTML = `<html><body>
<table class="js-table-ratings">
<tr><td>Jan-02-26</td><td>Upgrade</td><td>Example Securities</td><td>Hold to Buy</td><td>$150 to $180</td></tr>
</table>
</body></html>`

func TestExtractTable(t *testing.T) {
	c := &fakeCompleter{replies: []reply{{
		text: `{"rows":[
			{"date":"Jan-02-26","action":"Upgrade","analyst":"Example Securities",
			 "rating_change":"Hold to Buy","price_target_change":"$150 to $180"}]}`,
	}}}
	e := newTestEngine(c, 3)

	snap := models.Snapshot{URL: "https://finviz.com/quote.ashx?t=AAPL", HTML: ratingsHTML}
	res, err := e.Extract(context.Background(), snap, ratingsSection(t))
	require.NoError(t, err)

	assert.Equal(t, models.DatasetRatings, res.Dataset)
	assert.Equal(t, []string{"date", "action", "analyst", "rating_change", "price_target_change"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"Jan-02-26", "Upgrade", "Example Securities", "Hold to Buy", "$150 to $180"}, res.Rows[0])
	assert.Equal(t, 1, c.calls)
}

func TestExtractRetriesMalformedReply(t *testing.T) {
	c := &fakeCompleter{replies: []reply{
		{text: `{"rows":[{"date":"x","wrong_key":"y"}]}`},
		{text: `{"rows":[{"date":"Jan-02-26","action":"Upgrade","analyst":"A","rating_change":"B","price_target_change":"C"}]}`},
	}}
	e := newTestEngine(c, 3)

	snap := models.Snapshot{URL: "https://finviz.com/quote.ashx?t=AAPL", HTML: ratingsHTML}
	res, err := e.Extract(context.Background(), snap, ratingsSection(t))
	require.NoError(t, err)
	assert.Equal(t, 2, c.calls)
	assert.Len(t, res.Rows, 1)
}

func TestExtractExhaustsAttempts(t *testing.T) {
	c := &fakeCompleter{replies: []reply{
		{text: `not json`},
		{text: `not json`},
	}}
	e := newTestEngine(c, 2)

	snap := models.Snapshot{URL: "https://finviz.com/quote.ashx?t=AAPL", HTML: ratingsHTML}
	_, err := e.Extract(context.Background(), snap, ratingsSection(t))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeExtraction, models.CodeOf(err))
	assert.Equal(t, 2, c.calls)
}

func TestExtractAuthFailureNotRetried(t *testing.T) {
	authErr := models.NewScrapeError(models.ErrCodeLLMAuthFailure, "invalid api key", nil)
	c := &fakeCompleter{replies: []reply{{err: authErr}, {text: `{"rows":[]}`}}}
	e := newTestEngine(c, 3)

	snap := models.Snapshot{URL: "https://finviz.com/quote.ashx?t=AAPL", HTML: ratingsHTML}
	_, err := e.Extract(context.Background(), snap, ratingsSection(t))
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeLLMAuthFailure, models.CodeOf(err))
	assert.Equal(t, 1, c.calls)
}

func TestExtractWidgetAbsent(t *testing.T) {
	c := &fakeCompleter{}
	e := newTestEngine(c, 3)

	snap := models.Snapshot{URL: "https://finviz.com/quote.ashx?t=AAPL", HTML: "<html><body><p>nothing here</p></body></html>"}
	_, err := e.Extract(context.Background(), snap, ratingsSection(t))
	require.ErrorIs(t, err, ErrWidgetAbsent)
	assert.Equal(t, 0, c.calls)
}

func TestExtractStatementsSkipsService(t *testing.T) {
	sec, ok := catalog.SectionFor(models.DatasetIncome)
	require.True(t, ok)

	html := `<html><body><div id="statements">
<table data-testid="quote-statements-table">
<tr><td>Period</td><td>chart</td><td>FY 2024</td><td>FY 2025</td></tr>
<tr><td>Revenue</td><td><svg></svg></td><td>100</td><td>120</td></tr>
<tr><td>Net Income</td><td><svg></svg></td><td>10</td><td>14</td></tr>
</table></div></body></html>`

	c := &fakeCompleter{}
	e := newTestEngine(c, 3)

	res, err := e.Extract(context.Background(), models.Snapshot{URL: "https://finviz.com/quote.ashx?t=AAPL", HTML: html}, sec)
	require.NoError(t, err)
	assert.Equal(t, 0, c.calls)
	assert.Equal(t, []string{"Metric", "extracted_at", "FY 2024", "FY 2025"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, []string{"Revenue", "2026-03-14 09:30:00", "100", "120"}, res.Rows[0])
}

func TestExtractObjectPreservesOrder(t *testing.T) {
	sec, ok := catalog.SectionFor(models.DatasetMetrics)
	require.True(t, ok)

	html := `<html><body><table class="snapshot-table2">
<tr><td>P/E</td><td>28.1</td><td>Market Cap</td><td>3.1T</td></tr>
</table></body></html>`

	c := &fakeCompleter{replies: []reply{{text: `{"P/E":"28.1","Market Cap":"3.1T","Beta":1.2}`}}}
	e := newTestEngine(c, 3)

	res, err := e.Extract(context.Background(), models.Snapshot{URL: "https://finviz.com/quote.ashx?t=AAPL", HTML: html}, sec)
	require.NoError(t, err)
	assert.Equal(t, []string{"metric", "value"}, res.Columns)
	assert.Equal(t, [][]string{
		{"P/E", "28.1"},
		{"Market Cap", "3.1T"},
		{"Beta", "1.2"},
		{"extracted_at", "2026-03-14 09:30:00"},
	}, res.Rows, "capture time is stamped onto the artifact")
}

func TestExtractList(t *testing.T) {
	sec := catalog.TickersSection()
	html := `<html><body><table class="screener_table">
<tr><td>AAPL</td></tr><tr><td>MSFT</td></tr>
</table></body></html>`

	c := &fakeCompleter{replies: []reply{{text: `{"values":["AAPL","MSFT"]}`}}}
	e := newTestEngine(c, 3)

	res, err := e.Extract(context.Background(), models.Snapshot{URL: "https://finviz.com/screener.ashx?v=111", HTML: html}, sec)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, res.Values)
}

func TestExtractTextStripsFences(t *testing.T) {
	sec := catalog.PatentCountSection()
	html := `<html><body><div id="count">More than 100,000 results</div></body></html>`

	c := &fakeCompleter{replies: []reply{{text: "```\nMore than 100,000 results\n```"}}}
	e := newTestEngine(c, 3)

	res, err := e.Extract(context.Background(), models.Snapshot{URL: "https://patents.google.com/?assignee=apple", HTML: html}, sec)
	require.NoError(t, err)
	assert.Equal(t, "More than 100,000 results", res.Text)
}
