// Package export writes merged trend tables and run summaries to disk.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/trendmerge/pkg/align"
	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

// Long table header.
const (
	LongTimeColumn   = series.TimeColumn
	LongMetricColumn = "Trend"
	LongValueColumn  = "Interest"
)

// Timestamp layouts for written tables.
const (
	dateLayout     = time.DateOnly
	dateTimeLayout = time.DateTime
)

// ErrUnknownMissingPolicy is returned for an unrecognized missing-value policy.
var ErrUnknownMissingPolicy = errors.New("unknown missing-value policy")

// MissingPolicy selects how missing values are written.
type MissingPolicy string

const (
	// MissingEmpty writes missing values as empty fields.
	MissingEmpty MissingPolicy = "empty"
	// MissingSentinel writes missing values as Options.Sentinel.
	MissingSentinel MissingPolicy = "sentinel"
	// MissingDrop omits wide rows with any missing value and long records with a missing value.
	MissingDrop MissingPolicy = "drop"
)

// ParseMissingPolicy validates a policy name.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(s); p {
	case MissingEmpty, MissingSentinel, MissingDrop:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMissingPolicy, s)
	}
}

// Options controls value formatting.
type Options struct {
	Missing  MissingPolicy
	Sentinel string
}

// WriteWide writes the table as Time followed by one column per metric.
func WriteWide(w io.Writer, t *align.Table, opts Options) error {
	cw := csv.NewWriter(w)

	header := append([]string{series.TimeColumn}, t.Metrics...)
	err := cw.Write(header)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	layout := TimeLayout(t.Times)
	record := make([]string, len(header))

	for row, ts := range t.Times {
		values := t.Row(row)
		if opts.Missing == MissingDrop && anyMissing(values) {
			continue
		}

		record[0] = ts.Format(layout)
		for m, v := range values {
			record[m+1] = opts.formatValue(v)
		}

		err = cw.Write(record)
		if err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	return flush(cw)
}

// WriteLong writes records with the Time, Trend, Interest header.
func WriteLong(w io.Writer, records []align.Record, opts Options) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{LongTimeColumn, LongMetricColumn, LongValueColumn})
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	times := make([]time.Time, len(records))
	for i, r := range records {
		times[i] = r.Time
	}

	layout := TimeLayout(times)

	for i, r := range records {
		if opts.Missing == MissingDrop && math.IsNaN(r.Value) {
			continue
		}

		err = cw.Write([]string{r.Time.Format(layout), r.Metric, opts.formatValue(r.Value)})
		if err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	return flush(cw)
}

// TimeLayout returns a date-only layout when every timestamp is midnight,
// otherwise a date-time layout.
func TimeLayout(times []time.Time) string {
	for _, ts := range times {
		if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 || ts.Nanosecond() != 0 {
			return dateTimeLayout
		}
	}

	return dateLayout
}

func (o Options) formatValue(v float64) string {
	if math.IsNaN(v) {
		if o.Missing == MissingSentinel {
			return o.Sentinel
		}

		return ""
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

func anyMissing(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}

func flush(cw *csv.Writer) error {
	cw.Flush()

	err := cw.Error()
	if err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}
