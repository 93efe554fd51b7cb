package prep

import (
	"time"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// TemporalRule reinterprets an integer column as dates when Match holds for every
// present value. Parse returns false for a value that is in range but not a real date
// (for example 20230231); such cells become missing.
type TemporalRule struct {
	Name  string
	Match func(int64) bool
	Parse func(int64) (time.Time, bool)
}

// TemporalRules is the ordered rule list used by InferTemporalColumns. The first
// rule that covers a whole column wins. Calendar years come before epoch seconds
// because the epoch range contains every year value and would otherwise shadow it,
// so epoch seconds are tried last rather than second.
//
// This is a best-effort heuristic: an integer column of small counts in
// [1000, 9999] will be read as years.
var TemporalRules = []TemporalRule{
	{
		Name:  "yyyymmdd",
		Match: func(v int64) bool { return v >= 19000101 && v <= 21001231 },
		Parse: parseYYYYMMDD,
	},
	{
		Name:  "year",
		Match: func(v int64) bool { return v >= 1000 && v <= 9999 },
		Parse: func(v int64) (time.Time, bool) {
			return time.Date(int(v), time.January, 1, 0, 0, 0, 0, time.UTC), true
		},
	},
	{
		Name:  "unix_seconds",
		Match: func(v int64) bool { return v >= 0 && v <= 2147483647 },
		Parse: func(v int64) (time.Time, bool) { return time.Unix(v, 0).UTC(), true },
	},
}

func parseYYYYMMDD(v int64) (time.Time, bool) {
	y, m, d := int(v/10000), time.Month(v/100%100), int(v%100)
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// MatchTemporalRule returns the first rule covering every present value of c, or nil.
// Columns that are not integer, or have no present values, never match.
func MatchTemporalRule(c *table.Column, rules []TemporalRule) *TemporalRule {
	if c.Kind() != table.KindInteger {
		return nil
	}
	var vals []int64
	for _, v := range c.Values() {
		if n, ok := v.(int64); ok {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	for i := range rules {
		all := true
		for _, v := range vals {
			if !rules[i].Match(v) {
				all = false
				break
			}
		}
		if all {
			return &rules[i]
		}
	}
	return nil
}

// InferTemporalColumns converts integer candidate columns to datetime using
// TemporalRules. An empty candidate list considers every integer column. Columns
// that are not integer, or that no rule fully covers, are returned unchanged.
func InferTemporalColumns(t *table.Table, candidates []string) (*table.Table, error) {
	if _, err := requireColumns(t, "infer temporal columns", candidates); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		for _, c := range t.Columns() {
			if c.Kind() == table.KindInteger {
				candidates = append(candidates, c.Name())
			}
		}
	}
	out := t
	for _, name := range candidates {
		c, _ := t.Column(name)
		rule := MatchTemporalRule(c, TemporalRules)
		if rule == nil {
			continue
		}
		cells := c.Values()
		for i, v := range cells {
			n, ok := v.(int64)
			if !ok {
				continue
			}
			if ts, ok := rule.Parse(n); ok {
				cells[i] = ts
			} else {
				cells[i] = nil
			}
		}
		col, err := table.NewColumn(name, table.KindDatetime, cells)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}
