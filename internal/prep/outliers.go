package prep

import (
	"math"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// OutlierSuffix is appended to a column name to name its outlier flag column.
const OutlierSuffix = "_outliers"

// DetectOutliers adds one boolean "<col>_outliers" column per treated column.
// Source values and rows are left as they are.
//
//	IQR:    v < Q1 - k*IQR  or  v > Q3 + k*IQR   (linear-interpolated quartiles)
//	ZScore: |v - mean| / std > k                 (population std)
//
// threshold <= 0 selects the method default (1.5 for IQR, 3 for Z-score). An empty
// column list treats every numeric column. Missing cells are never flagged.
// An existing boolean "<col>_outliers" column is overwritten; any other column
// already holding that name is rejected so data is never replaced.
func DetectOutliers(t *table.Table, columns []string, method OutlierMethod, threshold float64) (*table.Table, error) {
	if method != OutlierIQR && method != OutlierZScore {
		return nil, table.Invalid("detect outliers", method.String(), "choose iqr or zscore")
	}
	if threshold <= 0 || math.IsNaN(threshold) {
		threshold = method.DefaultThreshold()
	}
	cols, err := numericColumns(t, "detect outliers", columns)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if prev, ok := t.Column(c.Name() + OutlierSuffix); ok && prev.Kind() != table.KindBool {
			return nil, table.Invalid("detect outliers", prev.Name(), "column already exists and is %s, not a flag", prev.Kind())
		}
	}
	out := t
	for _, c := range cols {
		vals, rows := c.Floats()
		isOutlier := outlierRule(vals, method, threshold)
		flags := make([]any, c.Len())
		for i := range flags {
			flags[i] = false
		}
		for k, v := range vals {
			if isOutlier(v) {
				flags[rows[k]] = true
			}
		}
		flag, err := table.NewColumn(c.Name()+OutlierSuffix, table.KindBool, flags)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(flag); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func outlierRule(vals []float64, method OutlierMethod, k float64) func(float64) bool {
	if len(vals) == 0 {
		return func(float64) bool { return false }
	}
	if method == OutlierZScore {
		mean, std := popMeanStd(vals)
		if std == 0 || math.IsNaN(std) {
			return func(float64) bool { return false }
		}
		return func(v float64) bool { return math.Abs((v-mean)/std) > k }
	}
	lo, hi := IQRBounds(vals, k)
	return func(v float64) bool { return v < lo || v > hi }
}

// IQRBounds returns the fences Q1 - k*IQR and Q3 + k*IQR.
func IQRBounds(vals []float64, k float64) (lower, upper float64) {
	s := sortedCopy(vals)
	q1 := quantile(s, 0.25)
	q3 := quantile(s, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
