package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/quickprep-cli/internal/loader"
	"github.com/KaramelBytes/quickprep-cli/internal/recipe"
)

// resetFlags clears Changed state and scalar values that would otherwise stick
// between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		switch v := f.Value.(type) {
		case pflag.SliceValue:
			_ = v.Replace(nil)
		default:
			if f.Value.Type() != "stringToString" {
				_ = f.Value.Set(f.DefValue)
			}
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
	for _, sf := range []*stepFlags{&prepSteps, &pushSteps} {
		clear(sf.rename)
		clear(sf.types)
		clear(sf.filter)
	}
}

// runCmd executes the root command with args in an isolated HOME and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QUICKPREP_POSTGRES_DSN", "")
	t.Setenv("DATABASE_URL", "")
	resetFlags(rootCmd)
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	cfgFile, debug, logFormat = "", false, ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const salesCSV = "id,Region,units\n1,north,3\n2,south,\n2,south,\n3,north,7\n"

func TestCLI_Overview(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)
	out, err := runCmd(t, "overview", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 4  Columns: 3")
	assert.Contains(t, out, "categorical")
	assert.Contains(t, out, "Region")
	assert.Contains(t, out, "NA", "missing cells are marked in the preview")
}

func TestCLI_PrepWithFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "sales.csv", salesCSV)
	outPath := filepath.Join(dir, "out", "clean.json")
	reportPath := filepath.Join(dir, "report.json")

	out, err := runCmd(t, "prep", path,
		"--standardize-names", "--dedupe", "--missing", "drop",
		"--filter", "region=north", "-o", outPath, "--report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 rows x 3 columns")

	got, err := loader.Load(outPath, loader.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "region", "units"}, got.Names())
	assert.Equal(t, 2, got.NumRows())

	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep recipe.Report
	require.NoError(t, json.Unmarshal(b, &rep))
	require.Len(t, rep.Steps, 4)
	assert.Equal(t, recipe.OpStandardizeNames, rep.Steps[0].Op)
	assert.Equal(t, 4, rep.Steps[1].RowsBefore)
	assert.Equal(t, 3, rep.Steps[1].RowsAfter)
	assert.Equal(t, 2, rep.Steps[3].RowsAfter)
}

func TestCLI_InitThenPrepWithRecipe(t *testing.T) {
	dir := t.TempDir()
	recipePath := filepath.Join(dir, "recipe.yaml")
	_, err := runCmd(t, "init", recipePath)
	require.NoError(t, err)

	_, err = runCmd(t, "init", recipePath)
	require.Error(t, err, "init must not overwrite")

	path := writeCSV(t, dir, "amounts.csv", "Region Name,Amount\nnorth,10.5\nsouth,\nnorth,10.5\neast,99.0\n")
	outPath := filepath.Join(dir, "clean.csv")
	_, err = runCmd(t, "prep", path, "--recipe", recipePath, "-o", outPath)
	require.NoError(t, err)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "region_name,amount,amount_outliers", lines[0])
	assert.Equal(t, "south,54.75,false", lines[2])
}

func TestCLI_PrepRejectsRecipeWithFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "sales.csv", salesCSV)
	_, err := runCmd(t, "prep", path, "--recipe", filepath.Join(dir, "r.yaml"), "--dedupe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestCLI_PrepPreviewWithoutOutput(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)
	out, err := runCmd(t, "prep", path, "--dedupe")
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 4 -> 3  Columns: 3 -> 3")
}

func TestCLI_DescribeWritesMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "sales.csv", salesCSV)
	mdPath := filepath.Join(dir, "summary.md")
	_, err := runCmd(t, "describe", path, "-o", mdPath, "--group-by", "Region")
	require.NoError(t, err)
	b, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[DATASET SUMMARY]")
	assert.Contains(t, string(b), "[GROUP-BY SUMMARY]")
}

func TestCLI_Aggregate(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "spend.csv", "category,amount\nA,10\nB,5\nA,2.5\n")
	out, err := runCmd(t, "aggregate", path, "--by", "category", "--metric", "amount")
	require.NoError(t, err)
	assert.Contains(t, out, "total_amount")
	assert.Contains(t, out, "12.5")
	assert.Less(t, strings.Index(out, "12.5"), strings.Index(out, " 5 "), "largest total first")

	_, err = runCmd(t, "aggregate", path, "--by", "category")
	require.Error(t, err)
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	_, err := runCmd(t, "--config", cfgPath, "config", "set", "missing_method", "median")
	require.NoError(t, err)
	out, err := runCmd(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "missing_method: median")

	_, err = runCmd(t, "--config", cfgPath, "config", "set", "missing_method", "interpolate")
	require.Error(t, err)
	_, err = runCmd(t, "--config", cfgPath, "config", "set", "no_such_key", "1")
	require.Error(t, err)
}

func TestCLI_PushWithoutDSN(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)
	_, err := runCmd(t, "push", path, "--table", "sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN")
}

func TestCLI_OverviewListSheetsNeedsXLSX(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sales.csv", salesCSV)
	_, err := runCmd(t, "overview", path, "--list-sheets")
	require.Error(t, err)
}
