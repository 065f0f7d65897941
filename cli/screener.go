package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/use-agent/finspider/catalog"
	"github.com/use-agent/finspider/models"
	"github.com/use-agent/finspider/scrape"
	"github.com/use-agent/finspider/screener"
)

func (a *app) screenerCommand() *cobra.Command {
	var (
		flags    datasetFlags
		filters  catalog.ScreenerFilters
		start    int
		end      int
		listOnly bool
	)

	cmd := &cobra.Command{
		Use:   "screener",
		Short: "Sweep screener result pages and scrape every matching ticker",
		Long: `Sweep the screener result grid page by page, collect the matching
tickers, persist the list, then scrape the selected datasets for each
ticker. With --list-only the sweep stops after persisting the list.

Pages hold 20 tickers. When --end is omitted the sweep runs to the last
page the pager reports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.buildPipeline()
			if err != nil {
				return err
			}
			defer p.close()

			w := screener.New(p.driver, p.engine, a.logger)
			tickers, err := w.Walk(cmd.Context(), filters, start, end)
			if err != nil {
				return err
			}
			if len(tickers) == 0 {
				fmt.Println("no tickers matched")
				return exitError{code: 1}
			}

			listRes := &models.Result{
				Dataset: models.DatasetTickers,
				Shape:   models.ShapeList,
				Values:  tickers,
			}
			if _, err := p.sink.Save("screener", listRes); err != nil {
				return err
			}
			fmt.Printf("screener matched %d tickers\n", len(tickers))
			if listOnly {
				return nil
			}

			datasets, subset := flags.selection()
			o := scrape.New(p.driver, p.engine, p.sink, a.logger)
			o.MetricsSubset = subset

			report := o.Run(cmd.Context(), tickers, datasets)
			return reportExit(report)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&start, "start", 1, "first result page (1-based)")
	fl.IntVar(&end, "end", 0, "last result page; 0 means run to the pager's last page")
	fl.StringVar(&filters.Exchange, "exch", "", "exchange filter slug (e.g. nasd, nyse)")
	fl.StringVar(&filters.Index, "idx", "", "index filter slug (e.g. sp500, djia)")
	fl.StringVar(&filters.Sector, "sector", "", "sector filter slug (e.g. technology)")
	fl.StringVar(&filters.Industry, "industry", "", "industry filter slug (e.g. biotechnology)")
	fl.StringVar(&filters.Country, "country", "", "country filter slug (e.g. usa)")
	fl.BoolVar(&listOnly, "list-only", false, "persist the ticker list and stop")
	flags.register(cmd)
	return cmd
}
