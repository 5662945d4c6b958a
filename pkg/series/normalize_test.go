package series_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func normalizeCSV(t *testing.T, content string) (series.Series, error) {
	t.Helper()

	raw, err := series.ReadRaw(strings.NewReader(content), "time_series_test.csv")
	require.NoError(t, err)

	return series.Normalize(raw)
}

func TestNormalize_CanonicalSeries(t *testing.T) {
	t.Parallel()

	got, err := normalizeCSV(t, " Time ,  y2k   fashion: (United Kingdom) \n"+
		"2020-03,3\n"+
		"2020-01,1\n"+
		"2020-02,2\n")
	require.NoError(t, err)

	assert.Equal(t, "Y2K Fashion: (United Kingdom)", got.Metric)
	assert.Equal(t, "time_series_test.csv", got.Source)

	want := []series.Point{
		{Time: month(2020, time.January), Value: 1},
		{Time: month(2020, time.February), Value: 2},
		{Time: month(2020, time.March), Value: 3},
	}

	if diff := cmp.Diff(want, got.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_NonNumericBecomesMissing(t *testing.T) {
	t.Parallel()

	got, err := normalizeCSV(t, "Time,Metric\n2020-01,N/A\n2020-02,<1\n2020-03,\n2020-04,7\n")
	require.NoError(t, err)

	require.Equal(t, 4, got.Len(), "missing values must not drop rows")
	assert.True(t, got.Points[0].Missing())
	assert.True(t, got.Points[1].Missing())
	assert.True(t, got.Points[2].Missing())
	assert.InDelta(t, 7.0, got.Points[3].Value, 1e-9)
	assert.Equal(t, 3, got.Stats.MissingValues)
}

func TestNormalize_DropsUnparsableTimestamps(t *testing.T) {
	t.Parallel()

	got, err := normalizeCSV(t, "Time,Metric\nnot-a-date,1\n2020-01,2\n,3\n")
	require.NoError(t, err)

	require.Equal(t, 1, got.Len())
	assert.Equal(t, month(2020, time.January), got.Points[0].Time)
	assert.Equal(t, 3, got.Stats.RowsRead)
	assert.Equal(t, 2, got.Stats.DroppedTimestamps)
}

func TestNormalize_DuplicatesKeepFirstOccurrence(t *testing.T) {
	t.Parallel()

	got, err := normalizeCSV(t, "Time,Metric\n2020-02,20\n2020-01,1\n2020-02,99\n2020-01-01,5\n")
	require.NoError(t, err)

	want := []series.Point{
		{Time: month(2020, time.January), Value: 1},
		{Time: month(2020, time.February), Value: 20},
	}

	if diff := cmp.Diff(want, got.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 2, got.Stats.Duplicates)
}

func TestNormalize_StrictlyAscending(t *testing.T) {
	t.Parallel()

	got, err := normalizeCSV(t, "Time,Metric\n2021-05,1\n2019-01,2\n2020-07,3\n2019-01,4\n2021-05,5\n2020-01,6\n")
	require.NoError(t, err)

	for i := 1; i < got.Len(); i++ {
		assert.True(t, got.Points[i-1].Time.Before(got.Points[i].Time), "index %d not strictly ascending", i)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	content := "Time,Metric\n2020-03,x\n2020-01,1\n2020-02,2\nbad,3\n2020-01,9\n"

	first, err := normalizeCSV(t, content)
	require.NoError(t, err)

	second, err := normalizeCSV(t, content)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("normalize is not deterministic (-first +second):\n%s", diff)
	}
}

func TestNormalize_MissingTimeColumn(t *testing.T) {
	t.Parallel()

	_, err := normalizeCSV(t, "Month,Metric\n2020-01,1\n")
	require.Error(t, err)
	require.ErrorIs(t, err, series.ErrMissingTimeColumn)

	var colErr *series.ColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "time_series_test.csv", colErr.Source)
	assert.Equal(t, []string{"Month", "Metric"}, colErr.Columns)
	assert.Contains(t, err.Error(), "time_series_test.csv")
}

func TestNormalize_AmbiguousValueColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "two value columns", content: "Time,A,B\n2020-01,1,2\n"},
		{name: "no value column", content: "Time\n2020-01\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := normalizeCSV(t, tt.content)
			require.ErrorIs(t, err, series.ErrAmbiguousValueColumn)
			assert.Contains(t, err.Error(), "time_series_test.csv")
		})
	}
}

func TestNormalize_ShortRowsAreMissing(t *testing.T) {
	t.Parallel()

	got, err := normalizeCSV(t, "Time,Metric\n2020-01\n2020-02,4\n")
	require.NoError(t, err)

	require.Equal(t, 2, got.Len())
	assert.True(t, math.IsNaN(got.Points[0].Value))
}

func TestReadRaw_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := series.ReadRaw(strings.NewReader(""), "empty.csv")
	require.ErrorIs(t, err, series.ErrEmptyInput)
}

func TestReadRaw_StripsByteOrderMark(t *testing.T) {
	t.Parallel()

	raw, err := series.ReadRaw(strings.NewReader("\ufeffTime,Metric\n2020-01,1\n"), "bom.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Time", "Metric"}, raw.Header)
	assert.Len(t, raw.Rows, 1)
}
