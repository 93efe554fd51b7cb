package prep

import (
	"math"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// HandleMissingValues drops or imputes missing cells.
//
// MissingDrop removes every row holding a missing cell in any column. MissingMean and
// MissingMedian fill numeric columns with the column mean/median and every other
// column with its mode. An integer column whose fill value is fractional, or outside
// the int64 range, becomes a float column. Columns with no present values stay missing.
func HandleMissingValues(t *table.Table, method MissingMethod) (*table.Table, error) {
	switch method {
	case MissingDrop:
		return dropMissing(t), nil
	case MissingMean, MissingMedian:
		return imputeMissing(t, method)
	}
	return nil, table.Invalid("handle missing values", method.String(), "choose drop, mean or median")
}

func dropMissing(t *table.Table) *table.Table {
	cols := t.Columns()
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		complete := true
		for _, c := range cols {
			if c.IsMissing(i) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return t.SelectRows(keep)
}

func imputeMissing(t *table.Table, method MissingMethod) (*table.Table, error) {
	cols := t.Columns()
	out := make([]*table.Column, len(cols))
	for j, c := range cols {
		filled, err := imputeColumn(c, method)
		if err != nil {
			return nil, err
		}
		out[j] = filled
	}
	return table.New(out...)
}

func imputeColumn(c *table.Column, method MissingMethod) (*table.Column, error) {
	if c.MissingCount() == 0 {
		return c, nil
	}
	cells := c.Values()
	kind := c.Kind()
	var fill any
	if kind.Numeric() {
		vals, _ := c.Floats()
		if len(vals) == 0 {
			return c, nil
		}
		var f float64
		if method == MissingMean {
			f, _ = popMeanStd(vals)
		} else {
			f = median(vals)
		}
		if kind == table.KindInteger && f == math.Trunc(f) && table.FitsInt64(f) {
			fill = int64(f)
		} else {
			if kind == table.KindInteger {
				kind = table.KindFloat
			}
			fill = f
		}
	} else {
		m, ok := mode(cells)
		if !ok {
			return c, nil
		}
		fill = m
	}
	for i, v := range cells {
		if v == nil {
			cells[i] = fill
		}
	}
	return table.NewColumn(c.Name(), kind, cells)
}
