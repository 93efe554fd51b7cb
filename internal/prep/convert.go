package prep

import (
	"sort"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// ConvertDataTypes casts the named columns to the given kinds. Cells that cannot be
// represented in the target kind become missing, matching permissive date parsing.
// Every column is checked before anything is converted.
func ConvertDataTypes(t *table.Table, targets map[string]table.Kind) (*table.Table, error) {
	return convertTypes(t, targets, false)
}

// ConvertDataTypesStrict is ConvertDataTypes but fails with a *table.CoercionError on
// the first cell that cannot be cast.
func ConvertDataTypesStrict(t *table.Table, targets map[string]table.Kind) (*table.Table, error) {
	return convertTypes(t, targets, true)
}

func convertTypes(t *table.Table, targets map[string]table.Kind, strict bool) (*table.Table, error) {
	names, err := requireColumns(t, "convert data types", keys(targets))
	if err != nil {
		return nil, err
	}
	out := t
	for _, name := range names {
		src, _ := t.Column(name)
		to := targets[name]
		if to < table.KindText || to > table.KindBool {
			return nil, table.Invalid("convert data types", to.String(), "unknown target kind for column %q", name)
		}
		cells := src.Values()
		for i, v := range cells {
			cv, ok := table.Convert(v, to)
			if !ok {
				if strict {
					return nil, &table.CoercionError{Column: name, Row: i, Value: v, Target: to}
				}
				cv = nil
			}
			cells[i] = cv
		}
		col, err := table.NewColumn(name, to, cells)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// requireColumns fails with ErrInvalidArgument naming the first absent column.
func requireColumns(t *table.Table, op string, names []string) ([]string, error) {
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			return nil, table.Invalid(op, n, "no such column")
		}
	}
	return names, nil
}

// numericColumns resolves names to numeric columns; empty names means every numeric column.
func numericColumns(t *table.Table, op string, names []string) ([]*table.Column, error) {
	if len(names) == 0 {
		var out []*table.Column
		for _, c := range t.Columns() {
			if c.Kind().Numeric() {
				out = append(out, c)
			}
		}
		return out, nil
	}
	out := make([]*table.Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, table.Invalid(op, n, "no such column")
		}
		if !c.Kind().Numeric() {
			return nil, table.Invalid(op, n, "column is %s, not numeric", c.Kind())
		}
		out = append(out, c)
	}
	return out, nil
}
