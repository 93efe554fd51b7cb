package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

func readings() *table.Table {
	return table.MustNew(
		table.MustColumn("Group", table.KindText, "A", "A", "B", "B", "A", "B", "C", "A", "B", "A"),
		table.MustColumn("Concentration", table.KindFloat, 0.5, 1.0, 0.8, 1.2, 0.7, 1.5, 0.2, 0.9, 1.4, nil),
		table.MustColumn("Temp", table.KindInteger, 70, 72, 68, 71, 69, 73, 65, 70, 74, 71),
		table.MustColumn("Score", table.KindFloat, 10.0, 12.0, 9.0, 13.0, 11.0, 14.0, 8.0, 11.5, 13.5, 500.0),
	)
}

func findCol(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range rep.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %q not in report", name)
	return ColumnSummary{}
}

func TestDescribeBasic(t *testing.T) {
	rep, err := Describe("readings.csv", readings(), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Rows)
	require.Len(t, rep.Cols, 4)
	assert.Len(t, rep.Samples, 5)

	conc := findCol(t, rep, "Concentration")
	assert.Equal(t, table.TagNumeric, conc.Tag)
	assert.Equal(t, 9, conc.NonNull)
	assert.Equal(t, 1, conc.Missing)
	assert.Equal(t, 0.2, conc.Min)
	assert.Equal(t, 1.5, conc.Max)
	assert.InDelta(t, 0.9, conc.Median, 1e-12)

	group := findCol(t, rep, "Group")
	assert.Equal(t, table.TagCategorical, group.Tag)
	assert.Equal(t, 3, group.Unique)
	require.NotEmpty(t, group.TopValues)
	assert.Equal(t, CategoryCount{Value: "A", Count: 5}, group.TopValues[0])

	score := findCol(t, rep, "Score")
	assert.Equal(t, 1, score.OutliersCount, "500 is far from the rest")
	assert.Greater(t, score.OutliersMaxAbsZ, 3.5)
}

func TestDescribeSampleStd(t *testing.T) {
	tb := table.MustNew(table.MustColumn("v", table.KindInteger, 2, 4, 4, 4, 5, 5, 7, 9))
	rep, err := Describe("", tb, Options{})
	require.NoError(t, err)
	v := findCol(t, rep, "v")
	assert.InDelta(t, 5.0, v.Mean, 1e-12)
	// sample std (n-1) of the classic population-std-2 series
	assert.InDelta(t, 2.138089935, v.Std, 1e-9)
	assert.InDelta(t, 4.0, v.Q1, 1e-12)
	assert.InDelta(t, 5.5, v.Q3, 1e-12)
	assert.Zero(t, v.OutlierThreshold, "outliers disabled")
}

func TestDescribeGroupByAndCorrelations(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = []string{"Group"}
	opt.Correlations = true
	rep, err := Describe("readings.csv", readings(), opt)
	require.NoError(t, err)

	require.Len(t, rep.Groups, 3)
	assert.Equal(t, "Group=A", rep.Groups[0].Key)
	assert.Equal(t, 5, rep.Groups[0].Size)
	temp := rep.Groups[0].Metrics["Temp"]
	assert.Equal(t, 5, temp.Count)
	assert.Equal(t, 69.0, temp.Min)
	assert.Equal(t, 72.0, temp.Max)

	require.NotNil(t, rep.Corr)
	assert.Equal(t, []string{"Concentration", "Temp", "Score"}, rep.Corr.Columns)
	for i := range rep.Corr.Values {
		assert.Equal(t, 1.0, rep.Corr.Values[i][i])
		for j := range rep.Corr.Values[i] {
			assert.Equal(t, rep.Corr.Values[i][j], rep.Corr.Values[j][i])
			assert.LessOrEqual(t, rep.Corr.Values[i][j], 1.0)
			assert.GreaterOrEqual(t, rep.Corr.Values[i][j], -1.0)
		}
	}
	assert.Greater(t, rep.Corr.Values[0][1], 0.5, "concentration tracks temperature")

	md := rep.Markdown()
	for _, section := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[GROUP-BY SUMMARY]", "[CORRELATIONS]", "[HEAD AND SAMPLE ROWS]"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "File: readings.csv")
	assert.True(t, strings.Contains(md, "- Group: categorical/text"))
}

func TestDescribeUnknownGroupColumn(t *testing.T) {
	opt := DefaultOptions()
	opt.GroupBy = []string{"nope"}
	_, err := Describe("", readings(), opt)
	require.True(t, errors.Is(err, table.ErrInvalidArgument))
}

func TestDescribeCorrelationNeedsTwoNumeric(t *testing.T) {
	tb := table.MustNew(table.MustColumn("v", table.KindFloat, 1.0, 2.0))
	rep, err := Describe("", tb, Options{Correlations: true})
	require.NoError(t, err)
	assert.Nil(t, rep.Corr)
	assert.Contains(t, rep.Markdown(), "[NOTES]")
}

func TestAggregateBy(t *testing.T) {
	got, err := AggregateBy(readings(), "Group", "Temp", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, CategoryTotal{Category: "A", Total: 352, Count: 5}, got[0])
	assert.Equal(t, CategoryTotal{Category: "B", Total: 286, Count: 4}, got[1])

	all, err := AggregateBy(readings(), "Group", "Temp", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = AggregateBy(readings(), "Group", "Group", 5)
	require.True(t, errors.Is(err, table.ErrInvalidArgument))
	_, err = AggregateBy(readings(), "ghost", "Temp", 5)
	require.True(t, errors.Is(err, table.ErrInvalidArgument))
}
