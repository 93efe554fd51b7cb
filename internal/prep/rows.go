package prep

import (
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// RemoveDuplicates keeps the first occurrence of every distinct row, preserving order.
func RemoveDuplicates(t *table.Table) *table.Table {
	seen := make(map[string]struct{}, t.NumRows())
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		k := t.RowKey(i)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	return t.SelectRows(keep)
}

// FilterRows keeps rows where every named column equals its literal. Literals are
// parsed according to the column kind; a literal that does not parse is rejected
// rather than silently matching nothing.
func FilterRows(t *table.Table, conditions map[string]string) (*table.Table, error) {
	type cond struct {
		col  *table.Column
		want any
	}
	conds := make([]cond, 0, len(conditions))
	for _, name := range keys(conditions) {
		c, ok := t.Column(name)
		if !ok {
			return nil, table.Invalid("filter rows", name, "no such column")
		}
		lit := conditions[name]
		want, ok := parseLiteral(lit, c.Kind())
		if !ok {
			return nil, table.Invalid("filter rows", lit, "not a %s value for column %q", c.Kind(), name)
		}
		conds = append(conds, cond{col: c, want: want})
	}
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		match := true
		for _, cd := range conds {
			if !cellEqual(cd.col.Value(i), cd.want) {
				match = false
				break
			}
		}
		if match {
			keep = append(keep, i)
		}
	}
	return t.SelectRows(keep), nil
}

// parseLiteral is table.Convert without the integer truncation: "2.5" never
// matches an integer column.
func parseLiteral(lit string, kind table.Kind) (any, bool) {
	if kind == table.KindInteger {
		n, err := strconv.ParseInt(strings.TrimSpace(lit), 10, 64)
		return n, err == nil
	}
	return table.Convert(lit, kind)
}

func cellEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}
