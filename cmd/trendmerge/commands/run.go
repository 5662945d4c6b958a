// Package commands implements CLI command handlers for trendmerge.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/trendmerge/internal/config"
	"github.com/Sumatoshi-tech/trendmerge/internal/observability"
	"github.com/Sumatoshi-tech/trendmerge/pkg/report"
	"github.com/Sumatoshi-tech/trendmerge/pkg/version"
)

type observabilityInit func(cfg observability.Config) (observability.Providers, error)

// RunCommand holds flags and dependencies for the run command.
type RunCommand struct {
	configPath string
	verbose    bool
	quiet      bool

	dir      string
	pattern  string
	minFiles int
	missing  string
	chartOut string
	noChart  bool
	summary  string
	noColor  bool

	initObs observabilityInit
	now     func() time.Time
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	return newRunCommandWithDeps(observability.Init, time.Now)
}

func newRunCommandWithDeps(initObs observabilityInit, now func() time.Time) *cobra.Command {
	rc := &RunCommand{
		initObs: initObs,
		now:     now,
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Merge trend exports",
		Long: `Discover the exports matching the input pattern, normalize each to a single
metric, inner-join them on timestamp and write the wide and long tables.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Config file (default: .trendmerge.yaml in CWD or $HOME)")
	cmd.Flags().BoolVarP(&rc.verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().BoolVarP(&rc.quiet, "quiet", "q", false, "Suppress console diagnostics and non-error logs")

	cmd.Flags().StringVar(&rc.dir, "dir", config.DefaultInputDir, "Directory holding the exports")
	cmd.Flags().StringVar(&rc.pattern, "pattern", config.DefaultInputPattern, "Glob selecting the exports")
	cmd.Flags().IntVar(&rc.minFiles, "min-files", config.DefaultInputMinFiles, "Minimum number of exports required")
	cmd.Flags().StringVar(&rc.missing, "missing", config.DefaultOutputMissing, "Missing values in outputs: empty, sentinel, drop")
	cmd.Flags().StringVar(&rc.chartOut, "chart-out", "", "Chart HTML path (default: a temp file)")
	cmd.Flags().BoolVar(&rc.noChart, "no-chart", false, "Do not render the chart")
	cmd.Flags().StringVar(&rc.summary, "summary", "", "Write a run summary (.json, .yaml)")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored console output")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, _ []string) (retErr error) {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyFlags(cmd, cfg)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("validate flags: %w", err)
	}

	obsCfg, err := rc.observabilityConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	providers, err := rc.initObs(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		if providers.Shutdown == nil {
			return
		}

		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("shutdown observability: %w", shutdownErr))
		}
	}()

	p, err := rc.newPipeline(cfg, providers, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	return p.run(cmd.Context())
}

// applyFlags overrides configuration values with explicitly set flags.
func (rc *RunCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("dir") {
		cfg.Input.Dir = rc.dir
	}

	if flags.Changed("pattern") {
		cfg.Input.Pattern = rc.pattern
	}

	if flags.Changed("min-files") {
		cfg.Input.MinFiles = rc.minFiles
	}

	if flags.Changed("missing") {
		cfg.Output.Missing = rc.missing
	}

	if flags.Changed("chart-out") {
		cfg.Chart.Output = rc.chartOut
	}

	if rc.noChart {
		cfg.Chart.Enabled = false
	}

	if flags.Changed("summary") {
		cfg.Output.SummaryFile = rc.summary
	}

	if rc.noColor {
		cfg.Report.NoColor = true
	}
}

func (rc *RunCommand) observabilityConfig(cfg *config.Config, logWriter io.Writer) (observability.Config, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	switch {
	case rc.verbose:
		level = slog.LevelDebug
	case rc.quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.MetricsTextfile = cfg.Telemetry.MetricsTextfile
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogWriter = logWriter

	return obsCfg, nil
}

func (rc *RunCommand) newPipeline(cfg *config.Config, providers observability.Providers, out io.Writer) (*runPipeline, error) {
	meter := providers.Meter
	if meter == nil {
		meter = noopmetric.NewMeterProvider().Meter("trendmerge")
	}

	metrics, err := observability.NewPipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create pipeline metrics: %w", err)
	}

	tracer := providers.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("trendmerge")
	}

	logger := providers.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if rc.quiet {
		out = io.Discard
	}

	return &runPipeline{
		cfg:     cfg,
		tracer:  tracer,
		logger:  logger,
		metrics: metrics,
		printer: report.NewPrinter(out, cfg.Report.NoColor),
		now:     rc.now,
	}, nil
}
