package series

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// byteOrderMark is skipped when it prefixes an export.
var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ReadRaw reads a comma-delimited export. The first record is the header.
// Short rows are padded with empty cells when normalized.
func ReadRaw(r io.Reader, source string) (RawTable, error) {
	buffered := bufio.NewReader(r)

	prefix, _ := buffered.Peek(len(byteOrderMark))
	if bytes.Equal(prefix, byteOrderMark) {
		_, _ = buffered.Discard(len(byteOrderMark))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return RawTable{}, fmt.Errorf("%w in %s", ErrEmptyInput, source)
	}

	if err != nil {
		return RawTable{}, fmt.Errorf("read header of %s: %w", source, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return RawTable{}, fmt.Errorf("read rows of %s: %w", source, err)
	}

	return RawTable{Source: source, Header: header, Rows: rows}, nil
}

// Normalize produces the canonical series for one raw export.
//
// Headers are trimmed, the "Time" column is required and exactly one other
// column must hold the metric. Rows whose timestamp does not parse are
// dropped; values that are not numeric become NaN. Duplicate timestamps keep
// their first occurrence and the result is sorted ascending.
func Normalize(raw RawTable) (Series, error) {
	header := make([]string, len(raw.Header))
	for i, h := range raw.Header {
		header[i] = strings.TrimSpace(h)
	}

	timeIdx := slices.Index(header, TimeColumn)
	if timeIdx < 0 {
		return Series{}, &ColumnError{Kind: ErrMissingTimeColumn, Source: raw.Source, Columns: header}
	}

	valueIdx := -1
	valueCols := 0

	for i := range header {
		if i == timeIdx {
			continue
		}

		valueIdx = i
		valueCols++
	}

	if valueCols != 1 {
		return Series{}, &ColumnError{Kind: ErrAmbiguousValueColumn, Source: raw.Source, Columns: header}
	}

	out := Series{
		Source: raw.Source,
		Metric: CanonicalName(header[valueIdx]),
		Points: make([]Point, 0, len(raw.Rows)),
	}

	out.Stats.RowsRead = len(raw.Rows)

	for _, row := range raw.Rows {
		ts, ok := ParseTime(cell(row, timeIdx))
		if !ok {
			out.Stats.DroppedTimestamps++

			continue
		}

		value := parseValue(cell(row, valueIdx))
		if math.IsNaN(value) {
			out.Stats.MissingValues++
		}

		out.Points = append(out.Points, Point{Time: ts, Value: value})
	}

	slices.SortStableFunc(out.Points, func(a, b Point) int {
		return a.Time.Compare(b.Time)
	})

	before := len(out.Points)
	out.Points = slices.CompactFunc(out.Points, func(a, b Point) bool {
		return a.Time.Equal(b.Time)
	})
	out.Stats.Duplicates = before - len(out.Points)

	return out, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return row[idx]
}

// parseValue coerces a cell to a float, returning NaN when it is not numeric.
func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}

	return v
}
