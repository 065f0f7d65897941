package patents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/finspider/catalog"
	"github.com/use-agent/finspider/models"
)

// fakeDriver records every interaction in order.
type fakeDriver struct {
	openedURL string
	actions   []string
}

func (d *fakeDriver) Open(_ context.Context, rawURL string) error {
	d.openedURL = rawURL
	d.actions = append(d.actions, "open")
	return nil
}

func (d *fakeDriver) Capture(context.Context) (models.Snapshot, error) {
	return models.Snapshot{URL: d.openedURL, HTML: ""}, nil
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	d.actions = append(d.actions, "click "+selector)
	return nil
}

func (d *fakeDriver) ClickText(_ context.Context, selector, text string) error {
	d.actions = append(d.actions, "clicktext "+selector+" "+text)
	return nil
}

func (d *fakeDriver) Fill(_ context.Context, selector, text string) error {
	d.actions = append(d.actions, "fill "+selector+" "+text)
	return nil
}

func (d *fakeDriver) PressEnter(_ context.Context, selector string) error {
	d.actions = append(d.actions, "enter "+selector)
	return nil
}

func (d *fakeDriver) WaitVisible(_ context.Context, selector string) error {
	d.actions = append(d.actions, "wait "+selector)
	return nil
}

func (d *fakeDriver) DismissCookieBanner(context.Context) {}

type fakeEngine struct{ phrase string }

func (e *fakeEngine) Extract(_ context.Context, _ models.Snapshot, _ catalog.Section) (*models.Result, error) {
	return &models.Result{
		Dataset: models.DatasetPatentCount,
		Shape:   models.ShapeText,
		Text:    e.phrase,
	}, nil
}

type fakeSink struct {
	entity string
	res    *models.Result
}

func (s *fakeSink) Save(entity string, res *models.Result) (string, error) {
	s.entity = entity
	s.res = res
	return "/tmp/" + entity + ".txt", nil
}

func TestSearchURL(t *testing.T) {
	assert.Equal(t,
		"https://patents.google.com/?assignee=apple+inc&oq=apple+inc",
		SearchURL("apple inc"))
	assert.Equal(t,
		"https://patents.google.com/?assignee=nvidia&oq=nvidia",
		SearchURL("  nvidia  "))
}

func TestRunWithoutDatesSkipsRefinementDrawer(t *testing.T) {
	d := &fakeDriver{}
	c := New(d, &fakeEngine{phrase: "About 52,340 results"}, nil)

	count, err := c.Run(context.Background(), "apple inc", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(52340), count.Total)
	assert.True(t, count.Approximate)

	// Navigation, counter wait, nothing else.
	assert.Equal(t, []string{"open", "wait div#count"}, d.actions)
}

func TestRunWithDatesDrivesDrawerInOrder(t *testing.T) {
	d := &fakeDriver{}
	c := New(d, &fakeEngine{phrase: "1,234 results"}, nil)

	count, err := c.Run(context.Background(), "nvidia", &DateRange{After: "2020-01-01", Before: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, int64(1234), count.Total)
	assert.False(t, count.Approximate)

	assert.Equal(t, []string{
		"open",
		"click span#compactQuery",
		"click dropdown-menu[label='Date'] iron-icon",
		"clicktext div.item Filing",
		"fill input#after 2020-01-01",
		"enter input#after",
		"fill input#before 2024-12-31",
		"enter input#before",
		"wait div#count",
	}, d.actions)
}

func TestRunRejectsBadDates(t *testing.T) {
	d := &fakeDriver{}
	c := New(d, &fakeEngine{phrase: "1 result"}, nil)

	_, err := c.Run(context.Background(), "nvidia", &DateRange{After: "01/01/2020", Before: "2024-12-31"})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeConfiguration, models.CodeOf(err))
	assert.Empty(t, d.actions, "invalid dates must fail before navigation")

	_, err = c.Run(context.Background(), "nvidia", &DateRange{After: "2024-12-31", Before: "2020-01-01"})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeConfiguration, models.CodeOf(err))
}

func TestRunPersistsThroughSink(t *testing.T) {
	d := &fakeDriver{}
	c := New(d, &fakeEngine{phrase: "More than 100,000 results"}, nil)
	sink := &fakeSink{}
	c.Sink = sink

	count, err := c.Run(context.Background(), "apple inc", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), count.Total)
	assert.Equal(t, "apple_inc", sink.entity)
	require.NotNil(t, sink.res)
	assert.Equal(t, models.DatasetPatentCount, sink.res.Dataset)
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		phrase      string
		total       int64
		approximate bool
	}{
		{"More than 100,000 results", 100000, true},
		{"About 52,340 results", 52340, true},
		{"1,234 results", 1234, false},
		{"1 result", 1, false},
	}
	for _, tc := range cases {
		count, err := parseCount(tc.phrase)
		require.NoError(t, err, tc.phrase)
		assert.Equal(t, tc.total, count.Total, tc.phrase)
		assert.Equal(t, tc.approximate, count.Approximate, tc.phrase)
	}

	_, err := parseCount("no results found")
	require.Error(t, err)
}
