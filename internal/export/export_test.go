package export

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/quickprep-cli/internal/loader"
	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

func sample() *table.Table {
	return table.MustNew(
		table.MustColumn("id", table.KindInteger, 1, 2, 3),
		table.MustColumn("name", table.KindText, "Ann", nil, "Bo, Jr."),
		table.MustColumn("score", table.KindFloat, 1.5, 2.0, nil),
		table.MustColumn("vip", table.KindBool, true, false, nil),
		table.MustColumn("joined", table.KindDatetime,
			time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), nil,
			time.Date(2023, 2, 1, 9, 30, 0, 0, time.UTC)),
	)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), 0))
	want := "id,name,score,vip,joined\n" +
		"1,Ann,1.5,true,2023-01-05\n" +
		"2,,2,false,\n" +
		"3,\"Bo, Jr.\",,,2023-02-01 09:30:00\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	tb := table.MustNew(
		table.MustColumn("b", table.KindInteger, 1, nil),
		table.MustColumn("a", table.KindDatetime, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), nil),
	)
	require.NoError(t, WriteJSON(&buf, tb))
	want := "[\n  {\"b\": 1, \"a\": \"2023-01-05T00:00:00Z\"},\n  {\"b\": null, \"a\": null}\n]\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, table.MustNew(table.MustColumn("x", table.KindText))))
	assert.Equal(t, "[]\n", buf.String())
}

func TestSaveRoundTripsThroughLoader(t *testing.T) {
	for _, name := range []string{"out.csv", "out.tsv", "out.json", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, sample()))
			got, err := loader.Load(path, loader.DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, sample().Names(), got.Names())
			for _, c := range sample().Columns() {
				gc, ok := got.Column(c.Name())
				require.True(t, ok)
				assert.Equal(t, c.Kind(), gc.Kind(), c.Name())
				assert.Equal(t, c.Values(), gc.Values(), c.Name())
			}
		})
	}
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	err := Save(path, sample())
	require.True(t, errors.Is(err, table.ErrInvalidArgument))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	Preview(&buf, sample(), 2)
	out := buf.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, MissingMarker)
	assert.NotContains(t, out, "Bo, Jr.")
}

func TestWriteXLSXLoadsBack(t *testing.T) {
	tb := table.MustNew(
		table.MustColumn("note", table.KindText, "a & b", "<x>", nil),
		table.MustColumn("n", table.KindFloat, 1.5, math.NaN(), -2.25),
	)
	path := filepath.Join(t.TempDir(), "wide.xlsx")
	require.NoError(t, Save(path, tb))

	got, err := loader.LoadXLSX(path, loader.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"note", "n"}, got.Names())
	note, _ := got.Column("note")
	assert.Equal(t, []any{"a & b", "<x>", nil}, note.Values())
	n, _ := got.Column("n")
	assert.Equal(t, []any{1.5, nil, -2.25}, n.Values())

	names, err := loader.SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{SheetName}, names)
}

func TestCellRef(t *testing.T) {
	assert.Equal(t, "A1", cellRef(0, 1))
	assert.Equal(t, "Z3", cellRef(25, 3))
	assert.Equal(t, "AA10", cellRef(26, 10))
	assert.Equal(t, "AZ2", cellRef(51, 2))
	assert.Equal(t, "BA2", cellRef(52, 2))
}
