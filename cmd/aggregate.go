package cmd

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/quickprep-cli/internal/analysis"
	"github.com/KaramelBytes/quickprep-cli/internal/export"
)

var (
	aggLoad   loadFlags
	aggBy     string
	aggMetric string
	aggTop    int
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <file>",
	Short: "Total a numeric column per category, largest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if aggBy == "" || aggMetric == "" {
			return errors.New("--by and --metric are required")
		}
		t, err := aggLoad.load(args[0])
		if err != nil {
			return err
		}
		totals, err := analysis.AggregateBy(t, aggBy, aggMetric, aggTop)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(totals))
		for _, ct := range totals {
			rows = append(rows, []string{
				ct.Category,
				strconv.FormatFloat(ct.Total, 'f', -1, 64),
				strconv.Itoa(ct.Count),
			})
		}
		export.Rows(cmd.OutOrStdout(), []string{aggBy, "total_" + aggMetric, "count"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggLoad.register(aggregateCmd)
	aggregateCmd.Flags().StringVar(&aggBy, "by", "", "categorical column to group by")
	aggregateCmd.Flags().StringVar(&aggMetric, "metric", "", "numeric column to total")
	aggregateCmd.Flags().IntVar(&aggTop, "top", 10, "number of categories to show (0 = all)")
}
