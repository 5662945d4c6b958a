package align

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

// Sentinel merge errors.
var (
	// ErrNoSeries is returned when Merge is called without input.
	ErrNoSeries = errors.New("at least one series is required")
	// ErrDuplicateMetric is returned when two series resolve to the same metric name.
	ErrDuplicateMetric = errors.New("duplicate metric name")
)

// Merge folds the series into one wide table with inner-join semantics:
// a timestamp survives only when every series has it. Columns keep the
// order of the input slice. Each input must have unique timestamps, which
// series.Normalize guarantees, so rows are never multiplied.
func Merge(list []series.Series) (*Table, error) {
	if len(list) == 0 {
		return nil, ErrNoSeries
	}

	acc := fromSeries(list[0])

	for _, s := range list[1:] {
		next, err := join(acc, s)
		if err != nil {
			return nil, err
		}

		acc = next
	}

	acc.sortByTime()

	return acc, nil
}

func fromSeries(s series.Series) *Table {
	return &Table{
		Times:   s.Times(),
		Metrics: []string{s.Metric},
		Values:  [][]float64{s.Values()},
	}
}

// join keeps the accumulator rows whose timestamp exists in s and appends
// the matching values of s as a new column.
func join(acc *Table, s series.Series) (*Table, error) {
	if slices.Contains(acc.Metrics, s.Metric) {
		return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateMetric, s.Metric, s.Source)
	}

	index := make(map[int64]float64, s.Len())
	for _, p := range s.Points {
		index[p.Time.UnixNano()] = p.Value
	}

	out := &Table{
		Metrics: append(slices.Clone(acc.Metrics), s.Metric),
		Values:  make([][]float64, len(acc.Metrics)+1),
	}

	added := make([]float64, 0, min(acc.Rows(), s.Len()))

	for row, ts := range acc.Times {
		value, ok := index[ts.UnixNano()]
		if !ok {
			continue
		}

		out.Times = append(out.Times, ts)

		for m := range acc.Metrics {
			out.Values[m] = append(out.Values[m], acc.Values[m][row])
		}

		added = append(added, value)
	}

	out.Values[len(acc.Metrics)] = added

	return out, nil
}
