// Package recipe reads an ordered list of preparation steps from YAML and applies
// them to a table.
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/quickprep-cli/internal/prep"
	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

// Step operation names.
const (
	OpStandardizeNames = "standardize_column_names"
	OpHandleMissing    = "handle_missing"
	OpConvertTypes     = "convert_types"
	OpDetectOutliers   = "detect_outliers"
	OpCleanText        = "clean_text"
	OpRemoveDuplicates = "remove_duplicates"
	OpScale            = "scale"
	OpFilter           = "filter"
	OpInferTemporal    = "infer_temporal"
	OpRename           = "rename"
)

// Ops lists every supported operation in documentation order.
var Ops = []string{
	OpStandardizeNames, OpHandleMissing, OpConvertTypes, OpDetectOutliers, OpCleanText,
	OpRemoveDuplicates, OpScale, OpFilter, OpInferTemporal, OpRename,
}

// Step is one entry of a recipe document. Fields that an operation does not use
// must be left empty.
type Step struct {
	Op        string            `yaml:"op"`
	Method    string            `yaml:"method,omitempty"`
	Threshold float64           `yaml:"threshold,omitempty"`
	Columns   []string          `yaml:"columns,omitempty"`
	Types     map[string]string `yaml:"types,omitempty"`
	Strict    bool              `yaml:"strict,omitempty"`
	Where     map[string]string `yaml:"where,omitempty"`
	Rename    map[string]string `yaml:"rename,omitempty"`
}

// Defaults fill in methods for steps that omit them.
type Defaults struct {
	MissingMethod    prep.MissingMethod
	OutlierMethod    prep.OutlierMethod
	OutlierThreshold float64
	ScaleMethod      prep.ScaleMethod
}

// DefaultDefaults returns mean imputation, IQR at the method default and standardization.
func DefaultDefaults() Defaults {
	return Defaults{MissingMethod: prep.MissingMean, OutlierMethod: prep.OutlierIQR, ScaleMethod: prep.ScaleStandardize}
}

type applyFunc func(*table.Table) (*table.Table, error)

// Recipe is a validated, ready-to-run list of steps.
type Recipe struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`

	compiled []applyFunc
}

// Load reads and validates a recipe file.
func Load(path string, d Defaults) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	r, err := Parse(b, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a YAML recipe and validates every step before returning, so a recipe
// either runs in full or is rejected up front. Unknown fields are errors.
func Parse(data []byte, d Defaults) (*Recipe, error) {
	var r Recipe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, table.Invalid("recipe", "steps", "recipe is empty")
		}
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	return New(r.Name, r.Steps, d)
}

// New validates steps and builds a Recipe from them.
func New(name string, steps []Step, d Defaults) (*Recipe, error) {
	if len(steps) == 0 {
		return nil, table.Invalid("recipe", "steps", "recipe has no steps")
	}
	r := &Recipe{Name: name, Steps: steps, compiled: make([]applyFunc, len(steps))}
	for i, s := range steps {
		fn, err := compile(s, d)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, s.Op, err)
		}
		r.compiled[i] = fn
	}
	return r, nil
}

// Marshal renders the recipe back to YAML.
func (r *Recipe) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

func compile(s Step, d Defaults) (applyFunc, error) {
	op := strings.ToLower(strings.TrimSpace(s.Op))
	if err := checkUnused(op, s); err != nil {
		return nil, err
	}
	switch op {
	case OpStandardizeNames:
		return prep.StandardizeColumnNames, nil

	case OpHandleMissing:
		m := d.MissingMethod
		if s.Method != "" {
			var err error
			if m, err = prep.ParseMissingMethod(s.Method); err != nil {
				return nil, err
			}
		}
		return func(t *table.Table) (*table.Table, error) { return prep.HandleMissingValues(t, m) }, nil

	case OpConvertTypes:
		if len(s.Types) == 0 {
			return nil, table.Invalid(op, "types", "at least one column: kind pair is required")
		}
		targets := make(map[string]table.Kind, len(s.Types))
		for col, k := range s.Types {
			kind, err := table.ParseKind(k)
			if err != nil {
				return nil, err
			}
			targets[col] = kind
		}
		if s.Strict {
			return func(t *table.Table) (*table.Table, error) { return prep.ConvertDataTypesStrict(t, targets) }, nil
		}
		return func(t *table.Table) (*table.Table, error) { return prep.ConvertDataTypes(t, targets) }, nil

	case OpDetectOutliers:
		m := d.OutlierMethod
		if s.Method != "" {
			var err error
			if m, err = prep.ParseOutlierMethod(s.Method); err != nil {
				return nil, err
			}
		}
		thr := s.Threshold
		if thr == 0 && s.Method == "" {
			thr = d.OutlierThreshold
		}
		if thr < 0 {
			return nil, table.Invalid(op, "threshold", "must not be negative")
		}
		cols := s.Columns
		return func(t *table.Table) (*table.Table, error) { return prep.DetectOutliers(t, cols, m, thr) }, nil

	case OpCleanText:
		cols := s.Columns
		return func(t *table.Table) (*table.Table, error) {
			if len(cols) == 0 {
				return prep.CleanText(t, textColumns(t))
			}
			return prep.CleanText(t, cols)
		}, nil

	case OpRemoveDuplicates:
		return func(t *table.Table) (*table.Table, error) { return prep.RemoveDuplicates(t), nil }, nil

	case OpScale:
		m := d.ScaleMethod
		if s.Method != "" {
			var err error
			if m, err = prep.ParseScaleMethod(s.Method); err != nil {
				return nil, err
			}
		}
		cols := s.Columns
		return func(t *table.Table) (*table.Table, error) { return prep.Scale(t, cols, m) }, nil

	case OpFilter:
		if len(s.Where) == 0 {
			return nil, table.Invalid(op, "where", "at least one column: value condition is required")
		}
		where := s.Where
		return func(t *table.Table) (*table.Table, error) { return prep.FilterRows(t, where) }, nil

	case OpInferTemporal:
		cols := s.Columns
		return func(t *table.Table) (*table.Table, error) { return prep.InferTemporalColumns(t, cols) }, nil

	case OpRename:
		if len(s.Rename) == 0 {
			return nil, table.Invalid(op, "rename", "at least one old: new pair is required")
		}
		mapping := s.Rename
		return func(t *table.Table) (*table.Table, error) { return prep.RenameColumns(t, mapping) }, nil
	}
	return nil, table.Invalid("recipe", s.Op, "unknown op (choose one of %s)", strings.Join(Ops, ", "))
}

// checkUnused rejects fields an operation would silently ignore.
func checkUnused(op string, s Step) error {
	uses := map[string][]string{
		OpStandardizeNames: nil,
		OpHandleMissing:    {"method"},
		OpConvertTypes:     {"types", "strict"},
		OpDetectOutliers:   {"method", "threshold", "columns"},
		OpCleanText:        {"columns"},
		OpRemoveDuplicates: nil,
		OpScale:            {"method", "columns"},
		OpFilter:           {"where"},
		OpInferTemporal:    {"columns"},
		OpRename:           {"rename"},
	}
	allowed, known := uses[op]
	if !known {
		return nil
	}
	set := map[string]bool{
		"method":    s.Method != "",
		"threshold": s.Threshold != 0,
		"columns":   len(s.Columns) > 0,
		"types":     len(s.Types) > 0,
		"strict":    s.Strict,
		"where":     len(s.Where) > 0,
		"rename":    len(s.Rename) > 0,
	}
	for _, a := range allowed {
		delete(set, a)
	}
	for _, f := range []string{"method", "threshold", "columns", "types", "strict", "where", "rename"} {
		if set[f] {
			return table.Invalid(op, f, "field is not used by this op")
		}
	}
	return nil
}

func textColumns(t *table.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if c.Kind() == table.KindText {
			out = append(out, c.Name())
		}
	}
	return out
}
