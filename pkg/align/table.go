// Package align joins canonical series on their timestamps into a wide table,
// reshapes it to long form and checks the result for calendar gaps.
package align

import (
	"cmp"
	"slices"
	"time"
)

// Table is the wide result of a merge: one timestamp axis and one value
// column per metric. Values[m][row] belongs to Metrics[m] at Times[row].
type Table struct {
	Times   []time.Time
	Metrics []string
	Values  [][]float64
}

// Rows returns the number of timestamps in the table.
func (t *Table) Rows() int {
	return len(t.Times)
}

// Column returns the values of the named metric.
func (t *Table) Column(metric string) ([]float64, bool) {
	idx := slices.Index(t.Metrics, metric)
	if idx < 0 {
		return nil, false
	}

	return t.Values[idx], true
}

// Row returns the values of every metric at the given row, in column order.
func (t *Table) Row(row int) []float64 {
	out := make([]float64, len(t.Metrics))

	for m := range t.Metrics {
		out[m] = t.Values[m][row]
	}

	return out
}

// Head returns a table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, t.Rows()))

	head := &Table{
		Times:   slices.Clone(t.Times[:n]),
		Metrics: slices.Clone(t.Metrics),
		Values:  make([][]float64, len(t.Values)),
	}

	for m, col := range t.Values {
		head.Values[m] = slices.Clone(col[:n])
	}

	return head
}

// sortByTime orders the rows ascending by timestamp, keeping ties stable.
func (t *Table) sortByTime() {
	order := make([]int, t.Rows())
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(t.Times[a].UnixNano(), t.Times[b].UnixNano())
	})

	t.Times = permute(t.Times, order)

	for m := range t.Values {
		t.Values[m] = permute(t.Values[m], order)
	}
}

func permute[T any](src []T, order []int) []T {
	out := make([]T, len(order))

	for i, j := range order {
		out[i] = src[j]
	}

	return out
}
