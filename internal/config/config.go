// Package config provides configuration loading and validation for trendmerge.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/trendmerge/pkg/export"
	"github.com/Sumatoshi-tech/trendmerge/pkg/plotpage"
)

// Config is the top-level configuration struct for trendmerge.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Report    ReportConfig    `mapstructure:"report"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// InputConfig selects the exports to merge.
type InputConfig struct {
	Dir      string `mapstructure:"dir"`
	Pattern  string `mapstructure:"pattern"`
	MinFiles int    `mapstructure:"min_files"`
	// MaxFileSize uses humanize syntax ("10MB"). Empty or "0" disables the limit.
	MaxFileSize string `mapstructure:"max_file_size"`
}

// OutputConfig names the written tables and how missing values appear in them.
type OutputConfig struct {
	// Dir defaults to Input.Dir when empty.
	Dir             string `mapstructure:"dir"`
	WideFile        string `mapstructure:"wide_file"`
	LongFile        string `mapstructure:"long_file"`
	Missing         string `mapstructure:"missing"`
	MissingSentinel string `mapstructure:"missing_sentinel"`
	SummaryFile     string `mapstructure:"summary_file"`
}

// ReportConfig holds console diagnostics settings.
type ReportConfig struct {
	PreviewRows      int  `mapstructure:"preview_rows"`
	MaxMissingMonths int  `mapstructure:"max_missing_months"`
	NoColor          bool `mapstructure:"no_color"`
}

// ChartConfig holds chart settings. An empty Output writes to a temp file.
type ChartConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Output  string `mapstructure:"output"`
	Title   string `mapstructure:"title"`
	XAxis   string `mapstructure:"x_axis"`
	YAxis   string `mapstructure:"y_axis"`
	Theme   string `mapstructure:"theme"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds tracing and metrics export settings.
type TelemetryConfig struct {
	OTLPEndpoint    string `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool   `mapstructure:"otlp_insecure"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// Sentinel errors for configuration validation.
var (
	// ErrEmptyInputDir indicates input.dir is empty.
	ErrEmptyInputDir = errors.New("input.dir must not be empty")
	// ErrEmptyInputPattern indicates input.pattern is empty.
	ErrEmptyInputPattern = errors.New("input.pattern must not be empty")
	// ErrInvalidMinFiles indicates input.min_files is not positive.
	ErrInvalidMinFiles = errors.New("input.min_files must be positive")
	// ErrInvalidMaxFileSize indicates input.max_file_size cannot be parsed.
	ErrInvalidMaxFileSize = errors.New("input.max_file_size is not a valid size")
	// ErrEmptyOutputFile indicates a wide or long file name is empty.
	ErrEmptyOutputFile = errors.New("output.wide_file and output.long_file must not be empty")
	// ErrSameOutputFile indicates the wide and long files collide.
	ErrSameOutputFile = errors.New("output.wide_file and output.long_file must differ")
	// ErrInvalidPreviewRows indicates report.preview_rows is negative.
	ErrInvalidPreviewRows = errors.New("report.preview_rows must be non-negative")
	// ErrInvalidMaxMissingMonths indicates report.max_missing_months is negative.
	ErrInvalidMaxMissingMonths = errors.New("report.max_missing_months must be non-negative")
	// ErrInvalidLogLevel indicates logging.level is not a slog level.
	ErrInvalidLogLevel = errors.New("logging.level must be debug, info, warn or error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	inputErr := c.validateInput()
	if inputErr != nil {
		return inputErr
	}

	outputErr := c.validateOutput()
	if outputErr != nil {
		return outputErr
	}

	if c.Report.PreviewRows < 0 {
		return ErrInvalidPreviewRows
	}

	if c.Report.MaxMissingMonths < 0 {
		return ErrInvalidMaxMissingMonths
	}

	_, themeErr := plotpage.ParseTheme(c.Chart.Theme)
	if themeErr != nil {
		return themeErr
	}

	_, levelErr := c.LogLevel()

	return levelErr
}

func (c *Config) validateInput() error {
	if c.Input.Dir == "" {
		return ErrEmptyInputDir
	}

	if c.Input.Pattern == "" {
		return ErrEmptyInputPattern
	}

	if c.Input.MinFiles < 1 {
		return ErrInvalidMinFiles
	}

	_, err := c.MaxFileSizeBytes()

	return err
}

func (c *Config) validateOutput() error {
	if c.Output.WideFile == "" || c.Output.LongFile == "" {
		return ErrEmptyOutputFile
	}

	if c.Output.WideFile == c.Output.LongFile {
		return ErrSameOutputFile
	}

	_, err := c.MissingPolicy()
	if err != nil {
		return err
	}

	if c.Output.SummaryFile != "" {
		_, err = export.CodecFor(c.Output.SummaryFile)
		if err != nil {
			return err
		}
	}

	return nil
}

// MaxFileSizeBytes parses Input.MaxFileSize. Zero means unlimited.
func (c *Config) MaxFileSizeBytes() (uint64, error) {
	if c.Input.MaxFileSize == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(c.Input.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.Input.MaxFileSize)
	}

	return size, nil
}

// OutputDir returns the directory outputs are written to.
func (c *Config) OutputDir() string {
	if c.Output.Dir != "" {
		return c.Output.Dir
	}

	return c.Input.Dir
}

// MissingPolicy parses Output.Missing.
func (c *Config) MissingPolicy() (export.MissingPolicy, error) {
	return export.ParseMissingPolicy(c.Output.Missing)
}

// ExportOptions returns the value formatting options for written tables.
func (c *Config) ExportOptions() (export.Options, error) {
	policy, err := c.MissingPolicy()
	if err != nil {
		return export.Options{}, err
	}

	return export.Options{Missing: policy, Sentinel: c.Output.MissingSentinel}, nil
}

// ChartTheme parses Chart.Theme.
func (c *Config) ChartTheme() (plotpage.Theme, error) {
	return plotpage.ParseTheme(c.Chart.Theme)
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}
