package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/finspider/models"
	"github.com/use-agent/finspider/scrape"
)

// datasetFlags maps one bool flag per quote-page dataset. Metrics is
// special: it optionally takes a comma-separated subset of metric names.
type datasetFlags struct {
	metrics    string
	insiders   bool
	info       bool
	managers   bool
	funds      bool
	ratings    bool
	news       bool
	holdingsBD bool
	top10      bool
	income     bool
	balance    bool
	cash       bool
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.metrics, "metrics", "", "scrape the metrics snapshot; optionally a comma-separated subset of metric names")
	fl.Lookup("metrics").NoOptDefVal = "all"
	fl.BoolVar(&f.insiders, "insiders", false, "scrape the insider-trading table")
	fl.BoolVar(&f.info, "info", false, "scrape the company profile text")
	fl.BoolVar(&f.managers, "managers", false, "scrape the institutional managers table (ETFs)")
	fl.BoolVar(&f.funds, "funds", false, "scrape the funds table (ETFs)")
	fl.BoolVar(&f.ratings, "ratings", false, "scrape the analyst ratings table")
	fl.BoolVar(&f.news, "news", false, "scrape the headline news table")
	fl.BoolVar(&f.holdingsBD, "holdings-bd", false, "scrape the ETF holdings breakdown")
	fl.BoolVar(&f.top10, "top10", false, "scrape the ETF top-10 holdings table")
	fl.BoolVar(&f.income, "income", false, "scrape the income statement (YoY view)")
	fl.BoolVar(&f.balance, "balance", false, "scrape the balance sheet (YoY view)")
	fl.BoolVar(&f.cash, "cash", false, "scrape the cash flow statement (YoY view)")
}

// selection resolves the flags to the datasets to scrape and the
// optional metrics subset. No dataset flag at all means everything.
func (f *datasetFlags) selection() (datasets []models.Dataset, metricsSubset []string) {
	add := func(on bool, d models.Dataset) {
		if on {
			datasets = append(datasets, d)
		}
	}
	add(f.metrics != "", models.DatasetMetrics)
	add(f.insiders, models.DatasetInsiders)
	add(f.info, models.DatasetInfo)
	add(f.managers, models.DatasetManagers)
	add(f.funds, models.DatasetFunds)
	add(f.ratings, models.DatasetRatings)
	add(f.news, models.DatasetNews)
	add(f.holdingsBD, models.DatasetHoldingsBD)
	add(f.top10, models.DatasetTop10)
	add(f.income, models.DatasetIncome)
	add(f.balance, models.DatasetBalance)
	add(f.cash, models.DatasetCash)

	if len(datasets) == 0 {
		datasets = allDatasets()
	}
	if f.metrics != "" && f.metrics != "all" {
		for _, m := range strings.Split(f.metrics, ",") {
			if m = strings.TrimSpace(m); m != "" {
				metricsSubset = append(metricsSubset, m)
			}
		}
	}
	return datasets, metricsSubset
}

func allDatasets() []models.Dataset {
	return []models.Dataset{
		models.DatasetMetrics,
		models.DatasetInsiders,
		models.DatasetInfo,
		models.DatasetManagers,
		models.DatasetFunds,
		models.DatasetRatings,
		models.DatasetNews,
		models.DatasetHoldingsBD,
		models.DatasetTop10,
		models.DatasetIncome,
		models.DatasetBalance,
		models.DatasetCash,
	}
}

func (a *app) scrapeCommand() *cobra.Command {
	var flags datasetFlags

	cmd := &cobra.Command{
		Use:   "scrape TICKER [TICKER...]",
		Short: "Scrape quote-page datasets for one or more tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, subset := flags.selection()

			p, err := a.buildPipeline()
			if err != nil {
				return err
			}
			defer p.close()

			o := scrape.New(p.driver, p.engine, p.sink, a.logger)
			o.MetricsSubset = subset

			report := o.Run(cmd.Context(), args, datasets)
			return reportExit(report)
		},
	}
	flags.register(cmd)
	return cmd
}
