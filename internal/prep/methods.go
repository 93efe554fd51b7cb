// Package prep holds the stateless table transformations used to clean a dataset
// before analysis: imputation, type conversion, outlier flagging, text cleanup,
// deduplication, scaling, renaming, filtering and temporal inference.
//
// Every function takes a *table.Table and returns a new one; inputs are never
// modified, so a failing call leaves the caller's table exactly as it was.
package prep

import (
	"strings"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// MissingMethod selects how HandleMissingValues treats missing cells.
type MissingMethod int

const (
	MissingDrop MissingMethod = iota
	MissingMean
	MissingMedian
)

func (m MissingMethod) String() string {
	switch m {
	case MissingDrop:
		return "drop"
	case MissingMean:
		return "mean"
	case MissingMedian:
		return "median"
	}
	return "unknown"
}

// ParseMissingMethod maps drop|mean|median onto a MissingMethod.
func ParseMissingMethod(s string) (MissingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop":
		return MissingDrop, nil
	case "mean":
		return MissingMean, nil
	case "median":
		return MissingMedian, nil
	}
	return 0, table.Invalid("handle missing values", s, "choose drop, mean or median")
}

// OutlierMethod selects the rule used by DetectOutliers.
type OutlierMethod int

const (
	OutlierIQR OutlierMethod = iota
	OutlierZScore
)

func (m OutlierMethod) String() string {
	switch m {
	case OutlierIQR:
		return "iqr"
	case OutlierZScore:
		return "zscore"
	}
	return "unknown"
}

// DefaultThreshold is the threshold used when a caller passes zero or less.
func (m OutlierMethod) DefaultThreshold() float64 {
	if m == OutlierZScore {
		return 3.0
	}
	return 1.5
}

// ParseOutlierMethod maps iqr|zscore onto an OutlierMethod.
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iqr":
		return OutlierIQR, nil
	case "zscore", "z-score", "z":
		return OutlierZScore, nil
	}
	return 0, table.Invalid("detect outliers", s, "choose iqr or zscore")
}

// ScaleMethod selects the rescaling applied by Scale.
type ScaleMethod int

const (
	ScaleStandardize ScaleMethod = iota
	ScaleNormalize
)

func (m ScaleMethod) String() string {
	switch m {
	case ScaleStandardize:
		return "standardize"
	case ScaleNormalize:
		return "normalize"
	}
	return "unknown"
}

// ParseScaleMethod maps standardize|normalize (and the older standarize|minmax spellings).
func ParseScaleMethod(s string) (ScaleMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standardize", "standarize", "zscore":
		return ScaleStandardize, nil
	case "normalize", "minmax", "min-max":
		return ScaleNormalize, nil
	}
	return 0, table.Invalid("scale", s, "choose standardize or normalize")
}
