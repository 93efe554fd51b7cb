package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Table is an ordered collection of equally long, uniquely named columns.
// Tables are values: methods that change shape or content return a new Table
// and leave the receiver untouched. Columns may be shared between tables.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a table, checking column lengths and name uniqueness.
func New(cols ...*Column) (*Table, error) {
	t := &Table{cols: make([]*Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), t.rows)
		}
		if _, dup := t.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name())
		}
		t.index[c.Name()] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New that panics on error.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. The slice is a copy.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name()
	}
	return out
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Value(i)
	}
	return out
}

// Head returns up to n leading rows.
func (t *Table) Head(n int) [][]any {
	if n > t.rows {
		n = t.rows
	}
	out := make([][]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, t.Row(i))
	}
	return out
}

// SelectRows keeps the rows at the given positions, in the given order.
func (t *Table) SelectRows(rows []int) *Table {
	out := &Table{cols: make([]*Column, len(t.cols)), index: t.index, rows: len(rows)}
	for j, c := range t.cols {
		out.cols[j] = c.take(rows)
	}
	return out
}

// WithColumn replaces the column of the same name in place, or appends c.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	if len(t.cols) > 0 && c.Len() != t.rows {
		return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), t.rows)
	}
	cols := t.Columns()
	if i, ok := t.index[c.Name()]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// WithNames renames every column positionally.
func (t *Table) WithNames(names []string) (*Table, error) {
	if len(names) != len(t.cols) {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), len(t.cols))
	}
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Renamed(names[i])
	}
	return New(cols...)
}

// RowKey encodes a row so that two rows share a key exactly when every cell is equal.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, c := range t.cols {
		if j > 0 {
			b.WriteByte(0x1f)
		}
		writeCellKey(&b, c.Value(i))
	}
	return b.String()
}

func writeCellKey(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("n")
	case int64:
		b.WriteString("i")
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		if x == 0 {
			x = 0 // fold -0 onto +0
		}
		b.WriteString("f")
		b.WriteString(strconv.FormatUint(math.Float64bits(x), 16))
	case bool:
		if x {
			b.WriteString("b1")
		} else {
			b.WriteString("b0")
		}
	case time.Time:
		b.WriteString("t")
		b.WriteString(strconv.FormatInt(x.UnixNano(), 10))
	case string:
		b.WriteString("s")
		b.WriteString(strconv.Itoa(len(x)))
		b.WriteByte(':')
		b.WriteString(x)
	}
}
