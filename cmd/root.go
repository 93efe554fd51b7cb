package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/quickprep-cli/internal/config"
	"github.com/KaramelBytes/quickprep-cli/internal/logging"
	"github.com/KaramelBytes/quickprep-cli/internal/prep"
	"github.com/KaramelBytes/quickprep-cli/internal/recipe"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Shared logger; writes to stderr so stdout carries data only.
	logger = zerolog.Nop()

	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:   "quickprep",
	Short: "quickprep: inspect, clean and publish tabular datasets",
	Long: `quickprep loads CSV, TSV, XLSX or JSON tables, summarizes them, applies
cleaning steps (imputation, type conversion, outlier flags, scaling, renaming,
deduplication) from flags or a YAML recipe, and writes the result to CSV/JSON
or a PostgreSQL table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.quickprep/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		warnf(os.Stderr, "failed to load config: %v", err)
		c = defaultConfig()
	}
	cfg = c

	level, format := cfg.LogLevel, cfg.LogFormat
	if debug {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}
	l, err := logging.New(level, format, os.Stderr)
	if err != nil {
		warnf(os.Stderr, "%v; using console logging", err)
		l, _ = logging.New("info", logging.FormatConsole, os.Stderr)
	}
	logger = l
}

// defaultConfig mirrors the built-in defaults for when no config can be read.
func defaultConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		SampleRows:      prep.DefaultSampleRows,
		MissingMethod:   prep.MissingMean.String(),
		OutlierMethod:   prep.OutlierIQR.String(),
		ScaleMethod:     prep.ScaleStandardize.String(),
		LogLevel:        "info",
		LogFormat:       logging.FormatConsole,
		PostgresSchema:  "public",
		InsertBatchSize: 500,
	}
}

// recipeDefaults turns configured method names into recipe defaults.
func recipeDefaults() (recipe.Defaults, error) {
	d := recipe.DefaultDefaults()
	if cfg == nil {
		return d, nil
	}
	var err error
	if d.MissingMethod, err = prep.ParseMissingMethod(cfg.MissingMethod); err != nil {
		return d, fmt.Errorf("missing_method: %w", err)
	}
	if d.OutlierMethod, err = prep.ParseOutlierMethod(cfg.OutlierMethod); err != nil {
		return d, fmt.Errorf("outlier_method: %w", err)
	}
	if d.ScaleMethod, err = prep.ParseScaleMethod(cfg.ScaleMethod); err != nil {
		return d, fmt.Errorf("scale_method: %w", err)
	}
	d.OutlierThreshold = cfg.OutlierThreshold
	return d, nil
}

func successf(w io.Writer, format string, a ...any) {
	okColor.Fprintf(w, "✓ "+format+"\n", a...)
}

func warnf(w io.Writer, format string, a ...any) {
	warnColor.Fprintf(w, "⚠ Warning: "+format+"\n", a...)
}
