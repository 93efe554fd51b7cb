package prep

import (
	"math"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// Scale rescales each named numeric column independently and stores the result as
// float. ScaleStandardize maps to zero mean and unit (population) variance;
// ScaleNormalize maps the observed [min, max] onto [0, 1]. A constant column scales
// to zeros. An empty column list scales every numeric column.
func Scale(t *table.Table, columns []string, method ScaleMethod) (*table.Table, error) {
	if method != ScaleStandardize && method != ScaleNormalize {
		return nil, table.Invalid("scale", method.String(), "choose standardize or normalize")
	}
	cols, err := numericColumns(t, "scale", columns)
	if err != nil {
		return nil, err
	}
	out := t
	for _, c := range cols {
		vals, rows := c.Floats()
		offset, spread := scaleParams(vals, method)
		cells := make([]any, c.Len())
		for k, v := range vals {
			cells[rows[k]] = (v - offset) / spread
		}
		col, err := table.NewColumn(c.Name(), table.KindFloat, cells)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scaleParams(vals []float64, method ScaleMethod) (offset, spread float64) {
	if len(vals) == 0 {
		return 0, 1
	}
	if method == ScaleStandardize {
		offset, spread = popMeanStd(vals)
	} else {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range vals {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		offset, spread = lo, hi-lo
	}
	if spread == 0 || math.IsNaN(spread) {
		spread = 1
	}
	return offset, spread
}
