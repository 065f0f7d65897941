package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/finspider/patents"
)

func (a *app) patentsCommand() *cobra.Command {
	var (
		after  string
		before string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "patents ASSIGNEE...",
		Short: "Count patents for an assignee, optionally within a filing-date range",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignee := strings.Join(args, " ")

			var dates *patents.DateRange
			if after != "" || before != "" {
				if after == "" || before == "" {
					return fmt.Errorf("--after and --before must be given together")
				}
				dates = &patents.DateRange{After: after, Before: before}
			}

			p, err := a.buildPipeline()
			if err != nil {
				return err
			}
			defer p.close()

			c := patents.New(p.driver, p.engine, a.logger)
			if save {
				c.Sink = p.sink
			}

			count, err := c.Run(cmd.Context(), assignee, dates)
			if err != nil {
				return err
			}

			qualifier := ""
			if count.Approximate {
				qualifier = "~"
			}
			fmt.Printf("%s: %s%d patents (%s)\n", assignee, qualifier, count.Total, count.Phrase)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&after, "after", "", "filing-date lower bound, YYYY-MM-DD")
	fl.StringVar(&before, "before", "", "filing-date upper bound, YYYY-MM-DD")
	fl.BoolVar(&save, "save", false, "persist the count as a text artifact")
	return cmd
}
