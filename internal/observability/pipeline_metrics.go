package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

const (
	metricFilesTotal         = "trendmerge.files.total"
	metricRowsReadTotal      = "trendmerge.rows.read.total"
	metricRowsDroppedTotal   = "trendmerge.rows.dropped.total"
	metricValuesMissing      = "trendmerge.values.missing.total"
	metricMergedRows         = "trendmerge.merge.rows"
	metricMissingMonths      = "trendmerge.continuity.missing_months"
	metricStageDuration      = "trendmerge.stage.duration.seconds"
	attrReason               = "reason"
	attrStage                = "stage"
	reasonInvalidTimestamp   = "invalid_timestamp"
	reasonDuplicateTimestamp = "duplicate_timestamp"
)

// stageBucketBoundaries covers 1ms to 60s.
var stageBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// PipelineMetrics holds OTel instruments for a merge run.
type PipelineMetrics struct {
	filesTotal    metric.Int64Counter
	rowsRead      metric.Int64Counter
	rowsDropped   metric.Int64Counter
	valuesMissing metric.Int64Counter
	mergedRows    metric.Int64Gauge
	missingMonths metric.Int64Gauge
	stageDuration metric.Float64Histogram
}

// NewPipelineMetrics creates pipeline instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		filesTotal:    b.counter(metricFilesTotal, "Input exports normalized", "{file}"),
		rowsRead:      b.counter(metricRowsReadTotal, "Data rows read from exports", "{row}"),
		rowsDropped:   b.counter(metricRowsDroppedTotal, "Rows dropped during normalization by reason", "{row}"),
		valuesMissing: b.counter(metricValuesMissing, "Values coerced to missing", "{value}"),
		mergedRows:    b.gauge(metricMergedRows, "Rows in the merged wide table", "{row}"),
		missingMonths: b.gauge(metricMissingMonths, "Month starts absent from the merged time axis", "{month}"),
		stageDuration: b.histogram(metricStageDuration, "Pipeline stage duration in seconds", "s", stageBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordSeries records the normalization statistics of one series.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordSeries(ctx context.Context, s series.Series) {
	if pm == nil {
		return
	}

	pm.filesTotal.Add(ctx, 1)
	pm.rowsRead.Add(ctx, int64(s.Stats.RowsRead))
	pm.rowsDropped.Add(ctx, int64(s.Stats.DroppedTimestamps),
		metric.WithAttributes(attribute.String(attrReason, reasonInvalidTimestamp)))
	pm.rowsDropped.Add(ctx, int64(s.Stats.Duplicates),
		metric.WithAttributes(attribute.String(attrReason, reasonDuplicateTimestamp)))
	pm.valuesMissing.Add(ctx, int64(s.Stats.MissingValues))
}

// RecordMerge records the merged table size and the continuity gap count.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordMerge(ctx context.Context, rows, missingMonths int) {
	if pm == nil {
		return
	}

	pm.mergedRows.Record(ctx, int64(rows))
	pm.missingMonths.Record(ctx, int64(missingMonths))
}

// RecordStage records how long a named stage took.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	if pm == nil {
		return
	}

	pm.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(attrStage, stage)))
}
