// Package series turns a single time-series export into a canonical,
// single-metric series with unique ascending timestamps.
package series

import (
	"math"
	"time"
)

// TimeColumn is the header every export must carry for its timestamp column.
const TimeColumn = "Time"

// RawTable is one delimited export as read from disk, before any cleaning.
type RawTable struct {
	// Source names the file the table came from; it is used in error messages.
	Source string
	Header []string
	Rows   [][]string
}

// Point is a single observation of a metric.
// A missing value is represented by NaN.
type Point struct {
	Time  time.Time
	Value float64
}

// Missing reports whether the point carries no numeric value.
func (p Point) Missing() bool {
	return math.IsNaN(p.Value)
}

// Stats counts what normalization did to the raw rows.
type Stats struct {
	RowsRead          int `json:"rows_read"          yaml:"rows_read"`
	DroppedTimestamps int `json:"dropped_timestamps" yaml:"dropped_timestamps"`
	MissingValues     int `json:"missing_values"     yaml:"missing_values"`
	Duplicates        int `json:"duplicates"         yaml:"duplicates"`
}

// Series is a canonical single-metric time series.
// Points are sorted ascending by Time and no two points share a timestamp.
type Series struct {
	Source string
	Metric string
	Points []Point
	Stats  Stats
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// Times returns the timestamps of the series in order.
func (s Series) Times() []time.Time {
	times := make([]time.Time, len(s.Points))

	for i, p := range s.Points {
		times[i] = p.Time
	}

	return times
}

// Values returns the values of the series in order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))

	for i, p := range s.Points {
		values[i] = p.Value
	}

	return values
}
