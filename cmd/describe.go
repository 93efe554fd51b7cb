package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/quickprep-cli/internal/analysis"
	"github.com/KaramelBytes/quickprep-cli/internal/utils"
)

var (
	descLoad       loadFlags
	descOutputPath string
	descSampleRows int
	descGroupBy    []string
	descCorr       bool
	descCorrGroups bool
	descOutliers   bool
	descOutlierThr float64
)

var describeCmd = &cobra.Command{
	Use:     "describe <file>",
	Aliases: []string{"analyze"},
	Short:   "Summarize a dataset as Markdown (schema, stats, groups, correlations)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, err := descLoad.load(path)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		opt.SampleRows = sampleRows(descSampleRows, cmd.Flags().Changed("sample-rows"))
		opt.GroupBy = descGroupBy
		opt.Correlations = descCorr
		opt.CorrPerGroup = descCorrGroups
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = descOutliers
		}
		if descOutlierThr > 0 {
			opt.OutlierThreshold = descOutlierThr
		}
		rep, err := analysis.Describe(filepath.Base(path), t, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()

		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			successf(cmd.OutOrStdout(), "Wrote summary to %s", descOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	descLoad.register(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the summary (Markdown)")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include (default from config)")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().BoolVar(&descCorrGroups, "corr-per-group", false, "compute correlation pairs within each group (may be slower)")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}
