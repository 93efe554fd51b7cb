package table

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMismatchedColumns(t *testing.T) {
	_, err := New(
		MustColumn("a", KindInteger, 1, 2),
		MustColumn("b", KindInteger, 1),
	)
	require.Error(t, err)

	_, err = New(
		MustColumn("a", KindInteger, 1),
		MustColumn("a", KindText, "x"),
	)
	require.ErrorContains(t, err, "duplicate column name")
}

func TestNewColumnNormalizesCells(t *testing.T) {
	c, err := NewColumn("x", KindFloat, []any{1.5, math.NaN(), 2, nil})
	require.NoError(t, err)
	assert.Equal(t, []any{1.5, nil, 2.0, nil}, c.Values())
	assert.Equal(t, 2, c.MissingCount())

	_, err = NewColumn("x", KindInteger, []any{"1"})
	require.Error(t, err)
}

func TestSelectRowsAndRowKey(t *testing.T) {
	tb := MustNew(
		MustColumn("id", KindInteger, 1, 2, 1),
		MustColumn("name", KindText, "a", "b", "a"),
	)
	assert.Equal(t, tb.RowKey(0), tb.RowKey(2))
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(1))

	sub := tb.SelectRows([]int{2, 1})
	require.Equal(t, 2, sub.NumRows())
	assert.Equal(t, []any{int64(1), "a"}, sub.Row(0))
	assert.Equal(t, 3, tb.NumRows(), "source table must not change")
}

func TestRowKeyDistinguishesKinds(t *testing.T) {
	tb := MustNew(
		MustColumn("a", KindText, "1", "", nil),
		MustColumn("b", KindText, "", "1", nil),
	)
	assert.NotEqual(t, tb.RowKey(0), tb.RowKey(1))
	assert.NotEqual(t, tb.RowKey(1), tb.RowKey(2))
}

func TestWithColumnReplacesOrAppends(t *testing.T) {
	tb := MustNew(MustColumn("a", KindInteger, 1, 2))
	out, err := tb.WithColumn(MustColumn("a", KindText, "x", "y"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, out.Names())
	col, _ := out.Column("a")
	assert.Equal(t, KindText, col.Kind())

	out, err = out.WithColumn(MustColumn("b", KindBool, true, false))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Names())

	_, err = out.WithColumn(MustColumn("c", KindBool, true))
	require.Error(t, err)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		in   any
		to   Kind
		want any
		ok   bool
	}{
		{"42", KindInteger, int64(42), true},
		{"007", KindInteger, int64(7), true},
		{"4.9", KindInteger, int64(4), true},
		{"abc", KindInteger, nil, false},
		{int64(3), KindFloat, 3.0, true},
		{2.5, KindText, "2.5", true},
		{"yes", KindBool, true, true},
		{"maybe", KindBool, nil, false},
		{"2023-06-15", KindDatetime, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{int64(0), KindDatetime, time.Unix(0, 0).UTC(), true},
		{nil, KindInteger, nil, true},
	}
	for _, tt := range tests {
		got, ok := Convert(tt.in, tt.to)
		assert.Equal(t, tt.ok, ok, "Convert(%v, %s)", tt.in, tt.to)
		assert.Equal(t, tt.want, got, "Convert(%v, %s)", tt.in, tt.to)
	}
}

func TestParseKindAndTags(t *testing.T) {
	k, err := ParseKind("int64")
	require.NoError(t, err)
	assert.Equal(t, KindInteger, k)
	assert.Equal(t, TagNumeric, k.Tag())
	assert.Equal(t, TagFlag, KindBool.Tag())
	assert.Equal(t, TagCategorical, KindText.Tag())

	_, err = ParseKind("complex128")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "2023-01-01", FormatTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023-01-01 08:30:00", FormatTime(time.Date(2023, 1, 1, 8, 30, 0, 0, time.UTC)))
}

func TestConvertIntegerRange(t *testing.T) {
	tests := []struct {
		in   any
		want any
		ok   bool
	}{
		{"9223372036854775808", nil, false},
		{"1e19", nil, false},
		{math.Pow(2, 63), nil, false},
		{-math.Pow(2, 63), int64(math.MinInt64), true},
		{"9007199254740992", int64(9007199254740992), true},
		{math.Inf(-1), nil, false},
	}
	for _, tt := range tests {
		got, ok := Convert(tt.in, KindInteger)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
	assert.False(t, FitsInt64(math.NaN()))
	assert.True(t, FitsInt64(math.Nextafter(math.Pow(2, 63), 0)))
}
