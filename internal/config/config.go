package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// Config defines the application configuration structure
type Config struct {
	Input  InputConfig  `mapstructure:"input"`
	Charts ChartsConfig `mapstructure:"charts"`
	Stats  StatsConfig  `mapstructure:"stats"`
	Export ExportConfig `mapstructure:"export"`
	Log    LogConfig    `mapstructure:"log"`

	// Source is the config file that was read, empty when only defaults apply.
	Source string `mapstructure:"-"`
}

// InputConfig defines where the door log is read from
type InputConfig struct {
	Path      string `mapstructure:"path"`
	Delimiter string `mapstructure:"delimiter"`
}

// ChartsConfig defines how charts are rendered
type ChartsConfig struct {
	OutputDir           string  `mapstructure:"output_dir"`
	Format              string  `mapstructure:"format"`
	WidthIn             float64 `mapstructure:"width_in"`
	HeightIn            float64 `mapstructure:"height_in"`
	AdvancedTypesetting bool    `mapstructure:"advanced_typesetting"`
}

// StatsConfig defines sampling and histogram parameters
type StatsConfig struct {
	SamplePeriod time.Duration `mapstructure:"sample_period"`
	TrendPeriod  time.Duration `mapstructure:"trend_period"`
	VisitMin     time.Duration `mapstructure:"visit_min"`
	VisitMax     time.Duration `mapstructure:"visit_max"`
	VisitBins    int           `mapstructure:"visit_bins"`
	FitFrom      int           `mapstructure:"fit_from"`
	FitTo        int           `mapstructure:"fit_to"`
}

// ExportConfig defines the optional data exports
type ExportConfig struct {
	CSVEnabled     bool   `mapstructure:"csv_enabled"`
	CSVDir         string `mapstructure:"csv_dir"`
	ParquetEnabled bool   `mapstructure:"parquet_enabled"`
	ParquetDir     string `mapstructure:"parquet_dir"`
	ReportPath     string `mapstructure:"report_path"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Environment string `mapstructure:"environment"`
}

// LoadConfig loads configuration from an optional YAML file and applies defaults.
// A missing file is not an error: the tool runs with defaults and no flags.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	var config Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
			}
		} else {
			config.Source = v.ConfigFileUsed()
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Default returns the configuration used when no file is present
func Default() Config {
	var config Config
	applyDefaults(&config)
	return config
}

// Validate checks values that defaults cannot repair
func (c Config) Validate() error {
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	switch c.Charts.Format {
	case "png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps":
	default:
		return fmt.Errorf("unsupported charts.format %q", c.Charts.Format)
	}
	if c.Stats.VisitMax <= c.Stats.VisitMin {
		return fmt.Errorf("stats.visit_max (%s) must exceed stats.visit_min (%s)", c.Stats.VisitMax, c.Stats.VisitMin)
	}
	if c.Stats.FitFrom < 0 || c.Stats.FitTo > c.Stats.VisitBins || c.Stats.FitFrom >= c.Stats.FitTo {
		return fmt.Errorf("stats fit range [%d, %d) is outside %d bins", c.Stats.FitFrom, c.Stats.FitTo, c.Stats.VisitBins)
	}
	return nil
}

// DelimiterRune returns the input delimiter as a rune
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Input.Delimiter)
	return r
}

// SeriesCSVDir returns the directory for series CSV files. It follows the
// chart directory unless csv_dir is set, so it must be read after flag overrides.
func (c Config) SeriesCSVDir() string {
	if c.Export.CSVDir != "" {
		return c.Export.CSVDir
	}
	return c.Charts.OutputDir
}

// applyDefaults sets default values for any config values not set from file
func applyDefaults(config *Config) {
	// Input defaults
	if config.Input.Path == "" {
		config.Input.Path = "door.csv"
	}
	if config.Input.Delimiter == "" {
		config.Input.Delimiter = ","
	}

	// Chart defaults
	if config.Charts.OutputDir == "" {
		config.Charts.OutputDir = "."
	}
	if config.Charts.Format == "" {
		config.Charts.Format = "png"
	}
	if config.Charts.WidthIn == 0 {
		config.Charts.WidthIn = 10
	}
	if config.Charts.HeightIn == 0 {
		config.Charts.HeightIn = 5
	}

	// Stats defaults
	if config.Stats.SamplePeriod == 0 {
		config.Stats.SamplePeriod = time.Minute
	}
	if config.Stats.TrendPeriod == 0 {
		config.Stats.TrendPeriod = 7 * 24 * time.Hour
	}
	if config.Stats.VisitMin == 0 {
		config.Stats.VisitMin = 30 * time.Second
	}
	if config.Stats.VisitMax == 0 {
		config.Stats.VisitMax = 3 * time.Hour
	}
	if config.Stats.VisitBins == 0 {
		config.Stats.VisitBins = 149
	}
	if config.Stats.FitFrom == 0 && config.Stats.FitTo == 0 {
		config.Stats.FitFrom = 6
		config.Stats.FitTo = 144
	}

	// Export defaults
	if config.Export.ParquetDir == "" {
		config.Export.ParquetDir = "./parquet_data"
	}

	// Log defaults
	if config.Log.Environment == "" {
		config.Log.Environment = "development"
	}
}
