package analysis

import (
	"sort"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// CategoryTotal is the summed metric for one category value.
type CategoryTotal struct {
	Category string
	Total    float64
	Count    int
}

// AggregateBy sums metric per distinct value of category, largest total first.
// Rows where either cell is missing are skipped. topN <= 0 keeps every category.
func AggregateBy(t *table.Table, category, metric string, topN int) ([]CategoryTotal, error) {
	cat, ok := t.Column(category)
	if !ok {
		return nil, table.Invalid("aggregate", category, "no such column")
	}
	met, ok := t.Column(metric)
	if !ok {
		return nil, table.Invalid("aggregate", metric, "no such column")
	}
	if !met.Kind().Numeric() {
		return nil, table.Invalid("aggregate", metric, "column is %s, not numeric", met.Kind())
	}

	totals := map[string]*CategoryTotal{}
	for i := 0; i < t.NumRows(); i++ {
		if cat.IsMissing(i) {
			continue
		}
		v, ok := met.Float(i)
		if !ok {
			continue
		}
		key := cat.Format(i)
		ct := totals[key]
		if ct == nil {
			ct = &CategoryTotal{Category: key}
			totals[key] = ct
		}
		ct.Total += v
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Category < out[j].Category
		}
		return out[i].Total > out[j].Total
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}
