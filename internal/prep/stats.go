package prep

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// quantile expects sorted input and interpolates linearly between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func sortedCopy(vals []float64) []float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return cp
}

func median(vals []float64) float64 { return quantile(sortedCopy(vals), 0.5) }

// popMeanStd returns the mean and the population (ddof=0) standard deviation.
func popMeanStd(vals []float64) (mean, std float64) {
	n := len(vals)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	mean = stat.Mean(vals, nil)
	if n == 1 {
		return mean, 0
	}
	v := stat.Variance(vals, nil) * float64(n-1) / float64(n)
	return mean, math.Sqrt(v)
}

// mode returns the most frequent non-missing value. Ties go to the smallest value.
func mode(cells []any) (any, bool) {
	counts := map[any]int{}
	for _, v := range cells {
		if v == nil {
			continue
		}
		counts[modeKey(v)]++
	}
	var best any
	bestN := 0
	for _, v := range cells {
		if v == nil {
			continue
		}
		n := counts[modeKey(v)]
		if n > bestN || (n == bestN && less(v, best)) {
			best, bestN = v, n
		}
	}
	return best, bestN > 0
}

// modeKey makes time values comparable as map keys regardless of location data.
func modeKey(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UnixNano()
	}
	return v
}

func less(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, _ := b.(string)
		return x < y
	case int64:
		y, _ := b.(int64)
		return x < y
	case float64:
		y, _ := b.(float64)
		return x < y
	case bool:
		y, _ := b.(bool)
		return !x && y
	case time.Time:
		y, _ := b.(time.Time)
		return x.Before(y)
	}
	return false
}
