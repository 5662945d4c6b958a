// Package report prints the human-facing diagnostics of a merge run.
package report

import (
	"github.com/Sumatoshi-tech/trendmerge/pkg/align"
)

const percentMultiplier = 100

// ZeroShare is the share of exact zero values of one metric.
// Valid is false when the table has no rows.
type ZeroShare struct {
	Metric  string
	Percent float64
	Valid   bool
}

// ZeroShares computes the zero share of every metric of t, in column order.
// Missing values count as non-zero.
func ZeroShares(t *align.Table) []ZeroShare {
	shares := make([]ZeroShare, len(t.Metrics))
	rows := t.Rows()

	for m, metric := range t.Metrics {
		shares[m] = ZeroShare{Metric: metric}
		if rows == 0 {
			continue
		}

		zeros := 0

		for _, v := range t.Values[m] {
			if v == 0 {
				zeros++
			}
		}

		shares[m].Percent = float64(zeros) / float64(rows) * percentMultiplier
		shares[m].Valid = true
	}

	return shares
}

// ZeroShareMap returns the valid shares keyed by metric.
func ZeroShareMap(shares []ZeroShare) map[string]float64 {
	out := make(map[string]float64, len(shares))

	for _, s := range shares {
		if s.Valid {
			out[s.Metric] = s.Percent
		}
	}

	return out
}
