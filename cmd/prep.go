package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/quickprep-cli/internal/export"
	"github.com/KaramelBytes/quickprep-cli/internal/recipe"
	"github.com/KaramelBytes/quickprep-cli/internal/table"
	"github.com/KaramelBytes/quickprep-cli/internal/utils"
)

var (
	prepLoad       loadFlags
	prepSteps      stepFlags
	prepOutputPath string
	prepReportPath string
	prepSampleRows int
)

var prepCmd = &cobra.Command{
	Use:   "prep <file>",
	Short: "Clean a dataset with a recipe or step flags and save or preview the result",
	Long: `Apply preparation steps to a CSV/TSV/XLSX/JSON table.

Steps come from a YAML recipe (--recipe, see 'quickprep init') or from flags.
Flag steps run in a fixed order: standardize names, rename, convert types,
infer temporal, clean text, dedupe, missing values, filter, outliers, scale.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := prepLoad.load(args[0])
		if err != nil {
			return err
		}
		r, err := prepSteps.build()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		out := t
		if r == nil {
			warnf(cmd.ErrOrStderr(), "no steps given; output equals input")
		} else {
			var rep *recipe.Report
			out, rep, err = recipe.Run(t, r, logger)
			if rep != nil && prepReportPath != "" {
				if werr := writeReport(cmd, prepReportPath, rep); werr != nil && err == nil {
					err = werr
				}
			}
			if err != nil {
				return err
			}
		}

		if prepOutputPath != "" {
			if err := export.Save(prepOutputPath, out); err != nil {
				return err
			}
			successf(w, "Wrote %d rows x %d columns to %s", out.NumRows(), out.NumCols(), prepOutputPath)
			return nil
		}
		printShape(cmd, t, out)
		export.Preview(w, out, sampleRows(prepSampleRows, cmd.Flags().Changed("sample-rows")))
		return nil
	},
}

func printShape(cmd *cobra.Command, before, after *table.Table) {
	fmt.Fprintf(cmd.OutOrStdout(), "Rows: %d -> %d  Columns: %d -> %d\n\n",
		before.NumRows(), after.NumRows(), before.NumCols(), after.NumCols())
}

// writeReport writes the run report as JSON; "-" prints it to stdout.
func writeReport(cmd *cobra.Command, path string, rep *recipe.Report) error {
	b, err := utils.PrettyJSON(rep)
	if err != nil {
		return err
	}
	if path == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(prepCmd)
	prepLoad.register(prepCmd)
	prepSteps.register(prepCmd)
	prepCmd.Flags().StringVarP(&prepOutputPath, "output", "o", "", "write the result to .csv, .tsv, .json or .xlsx instead of previewing")
	prepCmd.Flags().StringVar(&prepReportPath, "report", "", "write the JSON run report to this path ('-' for stdout)")
	prepCmd.Flags().IntVar(&prepSampleRows, "sample-rows", 5, "rows to preview when no --output is given (default from config)")
}
