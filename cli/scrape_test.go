package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/finspider/models"
)

func TestDatasetSelectionDefaultsToEverything(t *testing.T) {
	var f datasetFlags
	datasets, subset := f.selection()
	assert.Len(t, datasets, 12)
	assert.Empty(t, subset)
}

func TestDatasetSelectionExplicitFlags(t *testing.T) {
	f := datasetFlags{news: true, income: true}
	datasets, subset := f.selection()
	assert.Equal(t, []models.Dataset{models.DatasetNews, models.DatasetIncome}, datasets)
	assert.Empty(t, subset)
}

func TestDatasetSelectionMetricsSubset(t *testing.T) {
	f := datasetFlags{metrics: "pe, market cap,"}
	datasets, subset := f.selection()
	assert.Equal(t, []models.Dataset{models.DatasetMetrics}, datasets)
	assert.Equal(t, []string{"pe", "market cap"}, subset)
}

func TestDatasetSelectionMetricsAll(t *testing.T) {
	f := datasetFlags{metrics: "all"}
	datasets, subset := f.selection()
	assert.Equal(t, []models.Dataset{models.DatasetMetrics}, datasets)
	assert.Empty(t, subset, "bare --metrics must not narrow the subset")
}
