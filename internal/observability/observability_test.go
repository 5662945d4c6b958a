package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/trendmerge/internal/observability"
	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

func setupPipelineMeter(t *testing.T) (*observability.PipelineMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	pm, err := observability.NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return pm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}

	return nil
}

func sumInt(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64] for %s", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestPipelineMetrics_RecordSeries(t *testing.T) {
	t.Parallel()

	pm, reader := setupPipelineMeter(t)
	ctx := context.Background()

	for range 2 {
		pm.RecordSeries(ctx, series.Series{
			Metric: "A",
			Stats:  series.Stats{RowsRead: 10, DroppedTimestamps: 1, MissingValues: 2, Duplicates: 3},
		})
	}

	rm := collectMetrics(t, reader)

	files := findMetric(rm, "trendmerge.files.total")
	require.NotNil(t, files)
	assert.Equal(t, int64(2), sumInt(t, files))

	rows := findMetric(rm, "trendmerge.rows.read.total")
	require.NotNil(t, rows)
	assert.Equal(t, int64(20), sumInt(t, rows))

	dropped := findMetric(rm, "trendmerge.rows.dropped.total")
	require.NotNil(t, dropped)
	assert.Equal(t, int64(8), sumInt(t, dropped))

	missing := findMetric(rm, "trendmerge.values.missing.total")
	require.NotNil(t, missing)
	assert.Equal(t, int64(4), sumInt(t, missing))
}

func TestPipelineMetrics_RecordMergeAndStage(t *testing.T) {
	t.Parallel()

	pm, reader := setupPipelineMeter(t)
	ctx := context.Background()

	pm.RecordMerge(ctx, 24, 3)
	pm.RecordStage(ctx, "merge", 20*time.Millisecond)
	pm.RecordStage(ctx, "merge", 30*time.Millisecond)

	rm := collectMetrics(t, reader)

	rows := findMetric(rm, "trendmerge.merge.rows")
	require.NotNil(t, rows)

	gauge, ok := rows.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(24), gauge.DataPoints[0].Value)

	stage := findMetric(rm, "trendmerge.stage.duration.seconds")
	require.NotNil(t, stage)

	hist, ok := stage.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestPipelineMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var pm *observability.PipelineMetrics

	pm.RecordSeries(context.Background(), series.Series{})
	pm.RecordMerge(context.Background(), 1, 0)
	pm.RecordStage(context.Background(), "merge", time.Second)
}

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(observability.NewTracingHandler(inner, "trendmerge", observability.ModeCLI))

	ctx, span := tp.Tracer("test").Start(context.Background(), "merge")
	logger.InfoContext(ctx, "merged series")
	span.End()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	assert.Equal(t, spans[0].SpanContext.TraceID().String(), record["trace_id"])
	assert.Equal(t, spans[0].SpanContext.SpanID().String(), record["span_id"])
	assert.Equal(t, "trendmerge", record["service"])
	assert.Equal(t, "cli", record["mode"])
}

func TestTracingHandler_NoTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	inner := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(observability.NewTracingHandler(inner, "trendmerge", observability.ModeCLI))

	logger.WithGroup("stage").InfoContext(context.Background(), "no span", "name", "load")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	_, hasTraceID := record["trace_id"]
	assert.False(t, hasTraceID)
	assert.Equal(t, "trendmerge", record["service"])
	assert.Contains(t, record, "stage")
}

func TestInit_NoopWhenNothingConfigured(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &logs

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	providers.Logger.Info("hello")
	assert.Contains(t, logs.String(), "hello")
	assert.Contains(t, logs.String(), "service=trendmerge")

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_MetricsTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trendmerge.prom")

	cfg := observability.DefaultConfig()
	cfg.LogWriter = &bytes.Buffer{}
	cfg.MetricsTextfile = path

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	pm, err := observability.NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	pm.RecordSeries(context.Background(), series.Series{Stats: series.Stats{RowsRead: 7}})
	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "trendmerge_rows_read")
	assert.Contains(t, string(data), "target_info")
}
