package table

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Column is an immutable named sequence of cells of a single Kind.
// A nil cell is missing; other cells hold int64, float64, string, time.Time or bool
// according to Kind.
type Column struct {
	name  string
	kind  Kind
	cells []any
}

// NewColumn validates and normalizes cells for kind. Plain ints are widened to int64,
// NaN floats and non-UTC times are normalized (NaN becomes missing).
func NewColumn(name string, kind Kind, cells []any) (*Column, error) {
	out := make([]any, len(cells))
	for i, v := range cells {
		nv, err := normalizeCell(kind, v)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		out[i] = nv
	}
	return &Column{name: name, kind: kind, cells: out}, nil
}

// MustColumn is NewColumn that panics on error; intended for literals in tests and fixtures.
func MustColumn(name string, kind Kind, cells ...any) *Column {
	c, err := NewColumn(name, kind, cells)
	if err != nil {
		panic(err)
	}
	return c
}

func normalizeCell(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case KindInteger:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		}
	case KindFloat:
		switch x := v.(type) {
		case float64:
			if math.IsNaN(x) {
				return nil, nil
			}
			return x, nil
		case float32:
			if math.IsNaN(float64(x)) {
				return nil, nil
			}
			return float64(x), nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
	case KindText:
		if x, ok := v.(string); ok {
			return x, nil
		}
	case KindDatetime:
		if x, ok := v.(time.Time); ok {
			return x.UTC(), nil
		}
	case KindBool:
		if x, ok := v.(bool); ok {
			return x, nil
		}
	}
	return nil, fmt.Errorf("value %v (%T) does not fit kind %s", v, v, kind)
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.cells) }

// Value returns the raw cell; nil means missing.
func (c *Column) Value(i int) any { return c.cells[i] }

func (c *Column) IsMissing(i int) bool { return c.cells[i] == nil }

// Values returns a copy of the cells.
func (c *Column) Values() []any {
	out := make([]any, len(c.cells))
	copy(out, c.cells)
	return out
}

// MissingCount counts nil cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.cells {
		if v == nil {
			n++
		}
	}
	return n
}

// Float reads a numeric cell as float64. ok is false for missing or non-numeric cells.
func (c *Column) Float(i int) (float64, bool) {
	switch x := c.cells[i].(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// Floats returns the non-missing numeric values together with their row positions.
func (c *Column) Floats() (vals []float64, rows []int) {
	for i := range c.cells {
		if f, ok := c.Float(i); ok {
			vals = append(vals, f)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

// Format renders a cell as text; missing cells render as "".
func (c *Column) Format(i int) string { return FormatValue(c.cells[i]) }

// Renamed returns a copy of the column under a new name. Cells are shared.
func (c *Column) Renamed(name string) *Column {
	return &Column{name: name, kind: c.kind, cells: c.cells}
}

// take builds a column from the cells at the given row positions.
func (c *Column) take(rows []int) *Column {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = c.cells[r]
	}
	return &Column{name: c.name, kind: c.kind, cells: out}
}

// FormatValue renders a cell value the way CSV export and row keys see it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return FormatTime(x)
	default:
		return fmt.Sprint(x)
	}
}

// FormatTime prints a date-only layout for midnight values, otherwise date and time.
func FormatTime(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
