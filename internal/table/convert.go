package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano, time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"2006-01-02 15:04:05.999999999", "02-Jan-2006", "Jan 2, 2006", "2 Jan 2006",
}

// ParseTime tries the known date/time layouts in order. Times are returned in UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseBool accepts true/false, yes/no, y/n, t/f and 1/0 in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}

// Convert casts a single cell to kind. Missing stays missing. ok is false when a
// present value cannot be represented in the target kind.
//
// Integer targets truncate fractional floats toward zero. Numeric and datetime
// cells convert through Unix seconds. Text rendered from integers drops leading
// zeros, so text -> integer -> text is lossy for values like "007".
func Convert(v any, to Kind) (any, bool) {
	if v == nil {
		return nil, true
	}
	switch to {
	case KindText:
		return FormatValue(v), true
	case KindInteger:
		return toInteger(v)
	case KindFloat:
		return toFloat(v)
	case KindDatetime:
		return toDatetime(v)
	case KindBool:
		return toBool(v)
	}
	return nil, false
}

// FitsInt64 reports whether f is finite and inside the int64 range. float64(MaxInt64)
// rounds up to 2^63, so the upper bound is exclusive.
func FitsInt64(f float64) bool {
	return !math.IsNaN(f) && f >= math.MinInt64 && f < math.MaxInt64
}

func toInteger(v any) (any, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		if !FitsInt64(x) {
			return nil, false
		}
		return int64(x), true
	case bool:
		if x {
			return int64(1), true
		}
		return int64(0), true
	case time.Time:
		return x.Unix(), true
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return toInteger(f)
		}
	}
	return nil, false
}

func toFloat(v any) (any, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case bool:
		if x {
			return 1.0, true
		}
		return 0.0, true
	case time.Time:
		return float64(x.UnixNano()) / 1e9, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

func toDatetime(v any) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case int64:
		return time.Unix(x, 0).UTC(), true
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return nil, false
		}
		sec, frac := math.Modf(x)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	case string:
		if t, ok := ParseTime(x); ok {
			return t, true
		}
	}
	return nil, false
}

func toBool(v any) (any, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case int64:
		return x != 0, true
	case float64:
		return x != 0, true
	case string:
		if b, ok := ParseBool(x); ok {
			return b, true
		}
	}
	return nil, false
}
