package align

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDuplicateRecord is returned by Pivot when a (time, metric) pair repeats.
var ErrDuplicateRecord = errors.New("duplicate record")

// Record is one row of the long table.
type Record struct {
	Time   time.Time
	Metric string
	Value  float64
}

// Melt reshapes the wide table into records, enumerating rows in order and,
// within a row, metrics in column order.
func Melt(t *Table) []Record {
	out := make([]Record, 0, t.Rows()*len(t.Metrics))

	for row, ts := range t.Times {
		for m, metric := range t.Metrics {
			out = append(out, Record{Time: ts, Metric: metric, Value: t.Values[m][row]})
		}
	}

	return out
}

// Pivot rebuilds a wide table from records. Metrics are ordered by first
// appearance, timestamps ascending. Absent combinations become NaN.
func Pivot(records []Record) (*Table, error) {
	out := &Table{}
	metricIdx := make(map[string]int)
	rowIdx := make(map[int64]int)

	for _, r := range records {
		if _, ok := metricIdx[r.Metric]; !ok {
			metricIdx[r.Metric] = len(out.Metrics)
			out.Metrics = append(out.Metrics, r.Metric)
		}

		key := r.Time.UnixNano()
		if _, ok := rowIdx[key]; !ok {
			rowIdx[key] = len(out.Times)
			out.Times = append(out.Times, r.Time)
		}
	}

	out.Values = make([][]float64, len(out.Metrics))
	for m := range out.Values {
		out.Values[m] = make([]float64, len(out.Times))
		for row := range out.Values[m] {
			out.Values[m][row] = math.NaN()
		}
	}

	seen := make([]bool, len(out.Metrics)*len(out.Times))

	for _, r := range records {
		m, row := metricIdx[r.Metric], rowIdx[r.Time.UnixNano()]

		cell := m*len(out.Times) + row
		if seen[cell] {
			return nil, fmt.Errorf("%w: %s at %s", ErrDuplicateRecord, r.Metric, r.Time.Format(time.DateOnly))
		}

		seen[cell] = true
		out.Values[m][row] = r.Value
	}

	out.sortByTime()

	return out, nil
}
