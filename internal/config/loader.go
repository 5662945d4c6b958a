package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".trendmerge"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for trendmerge settings.
const envPrefix = "TRENDMERGE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("input.dir", DefaultInputDir)
	viperCfg.SetDefault("input.pattern", DefaultInputPattern)
	viperCfg.SetDefault("input.min_files", DefaultInputMinFiles)
	viperCfg.SetDefault("input.max_file_size", DefaultInputMaxFileSize)

	viperCfg.SetDefault("output.dir", DefaultOutputDir)
	viperCfg.SetDefault("output.wide_file", DefaultOutputWideFile)
	viperCfg.SetDefault("output.long_file", DefaultOutputLongFile)
	viperCfg.SetDefault("output.missing", DefaultOutputMissing)
	viperCfg.SetDefault("output.missing_sentinel", DefaultOutputMissingSentinel)
	viperCfg.SetDefault("output.summary_file", DefaultOutputSummaryFile)

	viperCfg.SetDefault("report.preview_rows", DefaultReportPreviewRows)
	viperCfg.SetDefault("report.max_missing_months", DefaultReportMaxMissingMonths)
	viperCfg.SetDefault("report.no_color", DefaultReportNoColor)

	viperCfg.SetDefault("chart.enabled", DefaultChartEnabled)
	viperCfg.SetDefault("chart.output", DefaultChartOutput)
	viperCfg.SetDefault("chart.title", DefaultChartTitle)
	viperCfg.SetDefault("chart.x_axis", DefaultChartXAxis)
	viperCfg.SetDefault("chart.y_axis", DefaultChartYAxis)
	viperCfg.SetDefault("chart.theme", DefaultChartTheme)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryOTLPInsecure)
	viperCfg.SetDefault("telemetry.metrics_textfile", DefaultTelemetryMetricsTextfile)
}
