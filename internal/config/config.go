package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/quickprep-cli/internal/logging"
	"github.com/KaramelBytes/quickprep-cli/internal/prep"
	"github.com/KaramelBytes/quickprep-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	// Loading and preview
	SampleRows int `mapstructure:"sample_rows" yaml:"sample_rows"`
	MaxRows    int `mapstructure:"max_rows" yaml:"max_rows"`

	// Default preparation methods used by quick flags and recipe steps that omit them
	MissingMethod    string  `mapstructure:"missing_method" yaml:"missing_method"`
	OutlierMethod    string  `mapstructure:"outlier_method" yaml:"outlier_method"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	ScaleMethod      string  `mapstructure:"scale_method" yaml:"scale_method"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// PostgreSQL sink
	PostgresDSN     string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
	PostgresSchema  string `mapstructure:"postgres_schema" yaml:"postgres_schema"`
	InsertBatchSize int    `mapstructure:"insert_batch_size" yaml:"insert_batch_size"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"sample_rows", "max_rows",
	"missing_method", "outlier_method", "outlier_threshold", "scale_method",
	"log_level", "log_format",
	"postgres_dsn", "postgres_schema", "insert_batch_size",
}

// DefaultPath returns ~/.quickprep/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".quickprep", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.quickprep/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotenv loads the nearest .env at or above start into the process
// environment. Variables already set are left alone. A missing file is not an error.
func LoadDotenv(start string) (string, error) {
	path, err := utils.FindUp(start, ".env")
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	return path, nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > .env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if _, err := LoadDotenv(""); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetEnvPrefix("QUICKPREP")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sample_rows", prep.DefaultSampleRows)
	v.SetDefault("max_rows", 0)
	v.SetDefault("missing_method", prep.MissingMean.String())
	v.SetDefault("outlier_method", prep.OutlierIQR.String())
	v.SetDefault("outlier_threshold", 0.0)
	v.SetDefault("scale_method", prep.ScaleStandardize.String())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", logging.FormatConsole)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("postgres_schema", "public")
	v.SetDefault("insert_batch_size", 500)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.PostgresDSN == "" {
		c.PostgresDSN = os.Getenv("DATABASE_URL")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that method names and numeric settings are usable.
func (c *Global) Validate() error {
	if _, err := prep.ParseMissingMethod(c.MissingMethod); err != nil {
		return fmt.Errorf("missing_method: %w", err)
	}
	if _, err := prep.ParseOutlierMethod(c.OutlierMethod); err != nil {
		return fmt.Errorf("outlier_method: %w", err)
	}
	if _, err := prep.ParseScaleMethod(c.ScaleMethod); err != nil {
		return fmt.Errorf("scale_method: %w", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("log_format: %q is not console or json", c.LogFormat)
	}
	if c.SampleRows < 0 || c.MaxRows < 0 || c.InsertBatchSize < 0 || c.OutlierThreshold < 0 {
		return errors.New("sample_rows, max_rows, insert_batch_size and outlier_threshold must not be negative")
	}
	return nil
}

// Set assigns key from its string form, validating the value.
func (c *Global) Set(key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	switch key {
	case "sample_rows":
		i, err := atoi()
		if err != nil {
			return err
		}
		c.SampleRows = i
	case "max_rows":
		i, err := atoi()
		if err != nil {
			return err
		}
		c.MaxRows = i
	case "insert_batch_size":
		i, err := atoi()
		if err != nil {
			return err
		}
		c.InsertBatchSize = i
	case "missing_method":
		m, err := prep.ParseMissingMethod(val)
		if err != nil {
			return err
		}
		c.MissingMethod = m.String()
	case "outlier_method":
		m, err := prep.ParseOutlierMethod(val)
		if err != nil {
			return err
		}
		c.OutlierMethod = m.String()
	case "outlier_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for outlier_threshold: %v", val)
		}
		c.OutlierThreshold = f
	case "scale_method":
		m, err := prep.ParseScaleMethod(val)
		if err != nil {
			return err
		}
		c.ScaleMethod = m.String()
	case "log_level":
		if _, err := logging.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		switch strings.ToLower(val) {
		case logging.FormatConsole, logging.FormatJSON:
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	case "postgres_dsn":
		c.PostgresDSN = val
	case "postgres_schema":
		c.PostgresSchema = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get renders key for display. Secrets in the DSN are masked.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "sample_rows":
		return strconv.Itoa(c.SampleRows), nil
	case "max_rows":
		return strconv.Itoa(c.MaxRows), nil
	case "missing_method":
		return c.MissingMethod, nil
	case "outlier_method":
		return c.OutlierMethod, nil
	case "outlier_threshold":
		return strconv.FormatFloat(c.OutlierThreshold, 'f', -1, 64), nil
	case "scale_method":
		return c.ScaleMethod, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "postgres_dsn":
		return MaskDSN(c.PostgresDSN), nil
	case "postgres_schema":
		return c.PostgresSchema, nil
	case "insert_batch_size":
		return strconv.Itoa(c.InsertBatchSize), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// MaskDSN hides the password of a postgres URL or key=value DSN.
func MaskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if i := strings.Index(dsn, "://"); i >= 0 {
		rest := dsn[i+3:]
		at := strings.LastIndex(rest, "@")
		colon := strings.Index(rest, ":")
		if at > 0 && colon >= 0 && colon < at {
			return dsn[:i+3] + rest[:colon+1] + "****" + rest[at:]
		}
		return dsn
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
