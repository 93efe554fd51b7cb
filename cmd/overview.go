package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/quickprep-cli/internal/export"
	"github.com/KaramelBytes/quickprep-cli/internal/loader"
	"github.com/KaramelBytes/quickprep-cli/internal/prep"
)

var (
	ovLoad       loadFlags
	ovSampleRows int
	ovListSheets bool
)

var overviewCmd = &cobra.Command{
	Use:   "overview <file>",
	Short: "Show shape, column types and the first rows of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ovListSheets {
			if !strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
				return fmt.Errorf("--list-sheets needs an .xlsx file")
			}
			names, err := loader.SheetNames(args[0])
			if err != nil {
				return err
			}
			for i, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, n)
			}
			return nil
		}
		t, err := ovLoad.load(args[0])
		if err != nil {
			return err
		}
		n := sampleRows(ovSampleRows, cmd.Flags().Changed("sample-rows"))
		ov := prep.Overview(t, n)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Rows: %d  Columns: %d\n\n", ov.RowCount, ov.ColumnCount)
		cols := t.Columns()
		rows := make([][]string, 0, len(ov.ColumnTypes))
		for i, ct := range ov.ColumnTypes {
			c := cols[i]
			rows = append(rows, []string{ct.Name, ct.Kind.String(), string(ct.Tag), strconv.Itoa(c.MissingCount())})
		}
		export.Rows(w, []string{"column", "kind", "type", "missing"}, rows)
		fmt.Fprintln(w)
		export.Preview(w, t, len(ov.SampleRows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	ovLoad.register(overviewCmd)
	overviewCmd.Flags().IntVar(&ovSampleRows, "sample-rows", 5, "number of leading rows to show (default from config)")
	overviewCmd.Flags().BoolVar(&ovListSheets, "list-sheets", false, "XLSX: list sheet names with their 1-based index and exit")
}
