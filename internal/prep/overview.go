package prep

import "github.com/KaramelBytes/quickprep-cli/internal/table"

// ColumnType pairs a column with its storage kind and logical tag.
type ColumnType struct {
	Name string
	Kind table.Kind
	Tag  table.Tag
}

// DataOverview is a read-only description of a table.
type DataOverview struct {
	RowCount    int
	ColumnCount int
	ColumnNames []string
	ColumnTypes []ColumnType
	SampleRows  [][]any
}

// DefaultSampleRows matches the usual head() preview size.
const DefaultSampleRows = 5

// Overview summarizes shape, column types and the leading rows of t.
func Overview(t *table.Table, sampleRows int) DataOverview {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	ov := DataOverview{
		RowCount:    t.NumRows(),
		ColumnCount: t.NumCols(),
		ColumnNames: t.Names(),
		SampleRows:  t.Head(sampleRows),
	}
	for _, c := range t.Columns() {
		ov.ColumnTypes = append(ov.ColumnTypes, ColumnType{Name: c.Name(), Kind: c.Kind(), Tag: c.Kind().Tag()})
	}
	return ov
}
