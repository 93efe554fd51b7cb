package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/quickprep-cli/internal/recipe"
)

// stepFlags build a recipe either from a YAML file or from one-off flags.
type stepFlags struct {
	recipePath    string
	standardize   bool
	rename        map[string]string
	types         map[string]string
	strict        bool
	inferTemporal bool
	temporalCols  []string
	cleanText     bool
	textCols      []string
	dedupe        bool
	missing       string
	filter        map[string]string
	outliers      string
	outlierThr    float64
	outlierCols   []string
	scale         string
	scaleCols     []string
}

func (f *stepFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.recipePath, "recipe", "r", "", "YAML recipe to apply (cannot be combined with step flags)")
	fs.BoolVar(&f.standardize, "standardize-names", false, "lowercase column names and replace punctuation with _")
	fs.StringToStringVar(&f.rename, "rename", nil, "rename columns: old=new (after --standardize-names)")
	fs.StringToStringVar(&f.types, "types", nil, "convert columns: name=integer|float|text|datetime|boolean")
	fs.BoolVar(&f.strict, "strict", false, "with --types, fail on the first value that does not convert")
	fs.BoolVar(&f.inferTemporal, "infer-temporal", false, "turn integer date-like columns (yyyymmdd, year, epoch) into datetimes")
	fs.StringSliceVar(&f.temporalCols, "temporal-columns", nil, "limit --infer-temporal to these columns")
	fs.BoolVar(&f.cleanText, "clean-text", false, "strip punctuation and surrounding spaces from text columns")
	fs.StringSliceVar(&f.textCols, "text-columns", nil, "limit --clean-text to these columns")
	fs.BoolVar(&f.dedupe, "dedupe", false, "drop repeated rows, keeping the first")
	fs.StringVar(&f.missing, "missing", "", "handle missing values: drop|mean|median")
	fs.StringToStringVar(&f.filter, "filter", nil, "keep rows where column=value (repeatable, all must match)")
	fs.StringVar(&f.outliers, "outliers", "", "add <col>_outliers flags: iqr|zscore")
	fs.Float64Var(&f.outlierThr, "outlier-threshold", 0, "outlier threshold (0 = method default: iqr 1.5, zscore 3)")
	fs.StringSliceVar(&f.outlierCols, "outlier-columns", nil, "limit --outliers to these numeric columns")
	fs.StringVar(&f.scale, "scale", "", "rescale numeric columns: standardize|normalize")
	fs.StringSliceVar(&f.scaleCols, "scale-columns", nil, "limit --scale to these numeric columns")
}

func (f *stepFlags) quickSteps() []recipe.Step {
	var steps []recipe.Step
	if f.standardize {
		steps = append(steps, recipe.Step{Op: recipe.OpStandardizeNames})
	}
	if len(f.rename) > 0 {
		steps = append(steps, recipe.Step{Op: recipe.OpRename, Rename: f.rename})
	}
	if len(f.types) > 0 {
		steps = append(steps, recipe.Step{Op: recipe.OpConvertTypes, Types: f.types, Strict: f.strict})
	}
	if f.inferTemporal {
		steps = append(steps, recipe.Step{Op: recipe.OpInferTemporal, Columns: f.temporalCols})
	}
	if f.cleanText {
		steps = append(steps, recipe.Step{Op: recipe.OpCleanText, Columns: f.textCols})
	}
	if f.dedupe {
		steps = append(steps, recipe.Step{Op: recipe.OpRemoveDuplicates})
	}
	if f.missing != "" {
		steps = append(steps, recipe.Step{Op: recipe.OpHandleMissing, Method: f.missing})
	}
	if len(f.filter) > 0 {
		steps = append(steps, recipe.Step{Op: recipe.OpFilter, Where: f.filter})
	}
	if f.outliers != "" {
		steps = append(steps, recipe.Step{Op: recipe.OpDetectOutliers, Method: f.outliers, Threshold: f.outlierThr, Columns: f.outlierCols})
	}
	if f.scale != "" {
		steps = append(steps, recipe.Step{Op: recipe.OpScale, Method: f.scale, Columns: f.scaleCols})
	}
	return steps
}

// build returns nil when neither a recipe nor any step flag was given.
func (f *stepFlags) build() (*recipe.Recipe, error) {
	d, err := recipeDefaults()
	if err != nil {
		return nil, err
	}
	steps := f.quickSteps()
	if f.recipePath != "" {
		if len(steps) > 0 {
			return nil, errors.New("--recipe cannot be combined with step flags")
		}
		return recipe.Load(f.recipePath, d)
	}
	if len(steps) == 0 {
		return nil, nil
	}
	return recipe.New("flags", steps, d)
}
