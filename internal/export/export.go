// Package export writes tables as CSV, JSON records, XLSX workbooks or a terminal preview.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
	"github.com/KaramelBytes/quickprep-cli/internal/utils"
)

// WriteCSV writes a header row and one record per table row. Missing cells are empty.
func WriteCSV(w io.Writer, t *table.Table, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := t.Columns()
	rec := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			rec[j] = c.Format(i)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an array of records whose keys follow column order. Missing cells
// are null and datetimes are RFC 3339 strings.
func WriteJSON(w io.Writer, t *table.Table) error {
	cols := t.Columns()
	keys := make([][]byte, len(cols))
	for j, c := range cols {
		k, err := json.Marshal(c.Name())
		if err != nil {
			return err
		}
		keys[j] = k
	}
	var b bytes.Buffer
	b.WriteString("[")
	for i := 0; i < t.NumRows(); i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n  {")
		for j, c := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			b.Write(keys[j])
			b.WriteString(": ")
			v, err := jsonValue(c.Value(i))
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, c.Name(), err)
			}
			b.Write(v)
		}
		b.WriteString("}")
	}
	if t.NumRows() > 0 {
		b.WriteString("\n")
	}
	b.WriteString("]\n")
	_, err := w.Write(b.Bytes())
	return err
}

func jsonValue(v any) ([]byte, error) {
	if ts, ok := v.(time.Time); ok {
		return json.Marshal(ts.Format(time.RFC3339))
	}
	return json.Marshal(v)
}

// Save writes t to path in the format implied by its extension (.csv, .tsv, .json or .xlsx).
// The file is replaced atomically.
func Save(path string, t *table.Table) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		err = WriteCSV(&buf, t, ',')
	case ".tsv":
		err = WriteCSV(&buf, t, '\t')
	case ".json":
		err = WriteJSON(&buf, t)
	case ".xlsx":
		err = WriteXLSX(&buf, t)
	default:
		return table.Invalid("save", path, "unsupported output type %q (use .csv, .tsv, .json or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// MissingMarker is how Preview renders a missing cell.
const MissingMarker = "NA"

// Preview renders the first n rows of t as a text table.
func Preview(w io.Writer, t *table.Table, n int) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Names())
	tw.SetAutoFormatHeaders(false)
	for _, row := range t.Head(n) {
		rec := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				rec[j] = MissingMarker
				continue
			}
			rec[j] = table.FormatValue(v)
		}
		tw.Append(rec)
	}
	tw.Render()
}

// Rows renders arbitrary string rows under header, used for summaries that are not tables.
func Rows(w io.Writer, header []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.AppendBulk(rows)
	tw.Render()
}
