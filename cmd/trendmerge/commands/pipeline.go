package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/trendmerge/internal/config"
	"github.com/Sumatoshi-tech/trendmerge/internal/observability"
	"github.com/Sumatoshi-tech/trendmerge/pkg/align"
	"github.com/Sumatoshi-tech/trendmerge/pkg/export"
	"github.com/Sumatoshi-tech/trendmerge/pkg/ingest"
	"github.com/Sumatoshi-tech/trendmerge/pkg/plotpage"
	"github.com/Sumatoshi-tech/trendmerge/pkg/report"
	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

// Stage names used for spans and the stage duration metric.
const (
	stageDiscover   = "discover"
	stageNormalize  = "normalize"
	stageMerge      = "merge"
	stageContinuity = "continuity"
	stageChart      = "chart"
	stageWrite      = "write"

	spanPrefix    = "trendmerge."
	chartTempGlob = "trendmerge-chart-*.html"
	outputDirPerm = 0o755
)

// runPipeline executes one merge run. Outputs are staged and published
// together in the write stage, so a failing run leaves none of them behind.
type runPipeline struct {
	cfg     *config.Config
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *observability.PipelineMetrics
	printer *report.Printer
	now     func() time.Time
}

// runState carries intermediate results between stages.
type runState struct {
	files      []string
	series     []series.Series
	table      *align.Table
	records    []align.Record
	continuity align.Continuity
	shares     []report.ZeroShare
	chart      *charts.Line
	outputs    []string
	chartPath  string
}

func (p *runPipeline) run(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, spanPrefix+"run")
	defer span.End()

	st := &runState{}

	err := p.stage(ctx, stageDiscover, func(ctx context.Context) error { return p.discover(ctx, st) })
	if err != nil {
		return err
	}

	p.printer.Files(st.files)

	err = p.stage(ctx, stageNormalize, func(ctx context.Context) error { return p.normalize(ctx, st) })
	if err != nil {
		return err
	}

	err = p.stage(ctx, stageMerge, func(ctx context.Context) error { return p.merge(ctx, st) })
	if err != nil {
		return err
	}

	_ = p.stage(ctx, stageContinuity, func(ctx context.Context) error {
		p.checkContinuity(ctx, st)

		return nil
	})

	p.printer.Continuity(st.continuity, p.cfg.Report.MaxMissingMonths)

	st.shares = report.ZeroShares(st.table)

	if p.cfg.Chart.Enabled {
		err = p.stage(ctx, stageChart, func(context.Context) error { return p.buildChart(st) })
		if err != nil {
			return err
		}
	}

	err = p.stage(ctx, stageWrite, func(ctx context.Context) error { return p.publish(ctx, st) })
	if err != nil {
		return err
	}

	p.printer.ZeroShares(st.shares)

	if st.chartPath != "" {
		p.printer.Chart(st.chartPath)
	}

	p.printer.Saved(st.outputs...)
	p.printer.Preview(st.table, p.cfg.Report.PreviewRows, export.TimeLayout(st.table.Times))

	return nil
}

// stage runs fn inside a child span and records its duration.
func (p *runPipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, spanPrefix+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	p.metrics.RecordStage(ctx, name, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

func (p *runPipeline) discover(ctx context.Context, st *runState) error {
	files, err := ingest.Discover(p.cfg.Input.Dir, p.cfg.Input.Pattern, p.cfg.Input.MinFiles)
	if err != nil {
		return err
	}

	st.files = files

	p.logger.InfoContext(ctx, "discovered inputs",
		"dir", p.cfg.Input.Dir, "pattern", p.cfg.Input.Pattern, "files", len(files))

	return nil
}

func (p *runPipeline) normalize(ctx context.Context, st *runState) error {
	maxSize, err := p.cfg.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	loader := ingest.Loader{MaxFileSize: maxSize, Logger: p.logger}

	list, err := loader.LoadAll(st.files)
	if err != nil {
		return err
	}

	for _, s := range list {
		p.metrics.RecordSeries(ctx, s)
		p.logger.InfoContext(ctx, "normalized series",
			"file", s.Source, "metric", s.Metric, "rows", s.Len())
	}

	st.series = list

	return nil
}

func (p *runPipeline) merge(ctx context.Context, st *runState) error {
	table, err := align.Merge(st.series)
	if err != nil {
		return err
	}

	st.table = table
	st.records = align.Melt(table)

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("rows", table.Rows()),
		attribute.Int("metrics", len(table.Metrics)),
	)

	p.logger.InfoContext(ctx, "merged series", "rows", table.Rows(), "metrics", table.Metrics)

	return nil
}

func (p *runPipeline) checkContinuity(ctx context.Context, st *runState) {
	st.continuity = align.CheckContinuity(st.table.Times)
	p.metrics.RecordMerge(ctx, st.table.Rows(), len(st.continuity.Missing))

	switch {
	case st.continuity.Empty:
		p.logger.WarnContext(ctx, "merged table is empty, continuity check skipped")
	case !st.continuity.Continuous:
		labels, _ := st.continuity.MissingLabels(0)
		p.logger.WarnContext(ctx, "time index is not month-start continuous",
			"expected", len(st.continuity.Expected), "rows", st.table.Rows(), "missing", labels)
	}
}

func (p *runPipeline) buildChart(st *runState) error {
	theme, err := p.cfg.ChartTheme()
	if err != nil {
		return err
	}

	st.chart = plotpage.BuildTrendChart(st.table, plotpage.TrendChartOptions{
		Title:      p.cfg.Chart.Title,
		XAxisLabel: p.cfg.Chart.XAxis,
		YAxisLabel: p.cfg.Chart.YAxis,
		Theme:      theme,
		TimeLayout: export.TimeLayout(st.table.Times),
	})

	return nil
}

// publish stages the tables, the chart and the summary, then commits them
// in one step. Any failure discards everything staged so far.
func (p *runPipeline) publish(ctx context.Context, st *runState) (err error) {
	opts, err := p.cfg.ExportOptions()
	if err != nil {
		return err
	}

	dir := p.cfg.OutputDir()

	err = os.MkdirAll(dir, outputDirPerm)
	if err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	batch := export.NewBatch()

	defer func() {
		if err != nil {
			batch.Discard()
		}
	}()

	sizes := make(map[string]int64)

	widePath := filepath.Join(dir, p.cfg.Output.WideFile)

	sizes[widePath], err = batch.Add(widePath, func(w io.Writer) error {
		return export.WriteWide(w, st.table, opts)
	})
	if err != nil {
		return err
	}

	longPath := filepath.Join(dir, p.cfg.Output.LongFile)

	sizes[longPath], err = batch.Add(longPath, func(w io.Writer) error {
		return export.WriteLong(w, st.records, opts)
	})
	if err != nil {
		return err
	}

	outputs := []string{widePath, longPath}

	chartPath, err := p.stageChart(batch, st, sizes)
	if err != nil {
		return err
	}

	if chartPath != "" {
		outputs = append(outputs, chartPath)
	}

	summaryPath := p.cfg.Output.SummaryFile
	if summaryPath != "" {
		sizes[summaryPath], err = p.stageSummary(batch, summaryPath, st, outputs)
		if err != nil {
			return err
		}

		outputs = append(outputs, summaryPath)
	}

	err = batch.Commit()
	if err != nil {
		return fmt.Errorf("publish outputs: %w", err)
	}

	for _, path := range outputs {
		p.logger.InfoContext(ctx, "wrote output", "path", path, "size", humanize.Bytes(uint64(sizes[path])))
	}

	st.chartPath = chartPath
	st.outputs = []string{widePath, longPath}

	if summaryPath != "" {
		st.outputs = append(st.outputs, summaryPath)
	}

	return nil
}

// stageChart adds the chart page to batch. Without a configured path the
// page goes to a reserved temp file.
func (p *runPipeline) stageChart(batch *export.Batch, st *runState, sizes map[string]int64) (string, error) {
	if st.chart == nil {
		return "", nil
	}

	path := p.cfg.Chart.Output
	if path == "" {
		reserved, err := batch.Reserve("", chartTempGlob)
		if err != nil {
			return "", fmt.Errorf("create chart file: %w", err)
		}

		path = reserved
	}

	n, err := batch.Add(path, func(w io.Writer) error {
		return plotpage.WriteChart(w, st.chart)
	})
	if err != nil {
		return "", err
	}

	sizes[path] = n

	return path, nil
}

func (p *runPipeline) stageSummary(batch *export.Batch, path string, st *runState, outputs []string) (int64, error) {
	codec, err := export.CodecFor(path)
	if err != nil {
		return 0, err
	}

	files := make([]export.FileSummary, len(st.series))
	for i, s := range st.series {
		files[i] = export.FileSummaryOf(s)
	}

	labels, _ := st.continuity.MissingLabels(0)

	sum := &export.Summary{
		GeneratedAt: p.now().UTC(),
		InputDir:    p.cfg.Input.Dir,
		Pattern:     p.cfg.Input.Pattern,
		Files:       files,
		MergedRows:  st.table.Rows(),
		Metrics:     st.table.Metrics,
		Continuity: export.ContinuitySummary{
			Checked:    !st.continuity.Empty,
			Empty:      st.continuity.Empty,
			Continuous: st.continuity.Continuous,
			Expected:   len(st.continuity.Expected),
			Missing:    labels,
		},
		ZeroShares: report.ZeroShareMap(st.shares),
		Outputs:    outputs,
	}

	n, err := batch.Add(path, func(w io.Writer) error {
		return codec.Encode(w, sum)
	})
	if err != nil {
		return 0, fmt.Errorf("save summary: %w", err)
	}

	return n, nil
}
