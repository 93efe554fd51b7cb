package prep

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestInferTemporalColumns(t *testing.T) {
	tb := table.MustNew(
		table.MustColumn("ymd", table.KindInteger, 20230101, 20230615),
		table.MustColumn("year", table.KindInteger, 1999, 2005),
		table.MustColumn("epoch", table.KindInteger, 0, 86400),
		table.MustColumn("mixed", table.KindInteger, -5, 20230101),
		table.MustColumn("label", table.KindText, "a", "b"),
	)
	out, err := InferTemporalColumns(tb, nil)
	require.NoError(t, err)

	assert.Equal(t, []any{day(2023, 1, 1), day(2023, 6, 15)}, col(t, out, "ymd").Values())
	assert.Equal(t, []any{day(1999, 1, 1), day(2005, 1, 1)}, col(t, out, "year").Values())
	assert.Equal(t, []any{day(1970, 1, 1), day(1970, 1, 2)}, col(t, out, "epoch").Values())
	assert.Equal(t, table.KindInteger, col(t, out, "mixed").Kind(), "no rule covers a negative value")
	assert.Equal(t, table.KindText, col(t, out, "label").Kind())
	assert.Equal(t, table.TagDatetime, col(t, out, "ymd").Kind().Tag())
}

func TestInferTemporalColumnsInvalidCalendarDate(t *testing.T) {
	tb := table.MustNew(table.MustColumn("d", table.KindInteger, 20230231, 20230301, nil))
	out, err := InferTemporalColumns(tb, []string{"d"})
	require.NoError(t, err)
	assert.Equal(t, []any{nil, day(2023, 3, 1), nil}, col(t, out, "d").Values())
}

func TestInferTemporalColumnsUnknownCandidate(t *testing.T) {
	tb := table.MustNew(table.MustColumn("d", table.KindInteger, 2001))
	_, err := InferTemporalColumns(tb, []string{"nope"})
	require.True(t, errors.Is(err, table.ErrInvalidArgument))
}

func TestMatchTemporalRuleOrder(t *testing.T) {
	tests := []struct {
		vals []any
		want string
	}{
		{[]any{19000101, 21001231}, "yyyymmdd"},
		{[]any{1000, 9999}, "year"},
		{[]any{1999, 1700000000}, "unix_seconds"},
		{[]any{1999, 20230101}, "unix_seconds"},
		{[]any{-1}, ""},
		{[]any{nil, nil}, ""},
	}
	for _, tt := range tests {
		c := table.MustColumn("c", table.KindInteger, tt.vals...)
		rule := MatchTemporalRule(c, TemporalRules)
		got := ""
		if rule != nil {
			got = rule.Name
		}
		assert.Equal(t, tt.want, got, "values %v", tt.vals)
	}
}
