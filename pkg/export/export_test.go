package export_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/trendmerge/pkg/align"
	"github.com/Sumatoshi-tech/trendmerge/pkg/export"
	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

var errBoom = errors.New("boom")

func month(m time.Month) time.Time {
	return time.Date(2020, m, 1, 0, 0, 0, 0, time.UTC)
}

func sampleTable() *align.Table {
	return &align.Table{
		Times:   []time.Time{month(time.February), month(time.March)},
		Metrics: []string{"Cargo Pants", "Maxi Skirt"},
		Values:  [][]float64{{2, math.NaN()}, {10, 20.5}},
	}
}

func TestWriteWide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts export.Options
		want string
	}{
		{
			name: "empty",
			opts: export.Options{Missing: export.MissingEmpty},
			want: "Time,Cargo Pants,Maxi Skirt\n2020-02-01,2,10\n2020-03-01,,20.5\n",
		},
		{
			name: "sentinel",
			opts: export.Options{Missing: export.MissingSentinel, Sentinel: "NaN"},
			want: "Time,Cargo Pants,Maxi Skirt\n2020-02-01,2,10\n2020-03-01,NaN,20.5\n",
		},
		{
			name: "drop",
			opts: export.Options{Missing: export.MissingDrop},
			want: "Time,Cargo Pants,Maxi Skirt\n2020-02-01,2,10\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, export.WriteWide(&buf, sampleTable(), tt.opts))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteWide_EmptyTableWritesHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	table := &align.Table{Metrics: []string{"A", "B"}, Values: [][]float64{{}, {}}}
	require.NoError(t, export.WriteWide(&buf, table, export.Options{}))
	assert.Equal(t, "Time,A,B\n", buf.String())
}

func TestWriteLong(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	records := align.Melt(sampleTable())
	require.NoError(t, export.WriteLong(&buf, records, export.Options{Missing: export.MissingDrop}))

	want := "Time,Trend,Interest\n" +
		"2020-02-01,Cargo Pants,2\n" +
		"2020-02-01,Maxi Skirt,10\n" +
		"2020-03-01,Maxi Skirt,20.5\n"
	assert.Equal(t, want, buf.String())
}

func TestTimeLayout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.DateOnly, export.TimeLayout([]time.Time{month(time.January)}))
	assert.Equal(t, time.DateOnly, export.TimeLayout(nil))
	assert.Equal(t, time.DateTime, export.TimeLayout([]time.Time{
		month(time.January),
		time.Date(2020, 2, 1, 6, 30, 0, 0, time.UTC),
	}))
}

func TestParseMissingPolicy(t *testing.T) {
	t.Parallel()

	p, err := export.ParseMissingPolicy("sentinel")
	require.NoError(t, err)
	assert.Equal(t, export.MissingSentinel, p)

	_, err = export.ParseMissingPolicy("zero")
	require.ErrorIs(t, err, export.ErrUnknownMissingPolicy)
}

func TestWriteFile_ReplacesAtomically(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	n, err := export.WriteFile(path, func(w io.Writer) error {
		_, werr := io.WriteString(w, "new content")

		return werr
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len("new content")), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))
}

func TestWriteFile_FailureKeepsOriginal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	_, err := export.WriteFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be removed")
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent", "out.csv")

	_, err := export.WriteFile(path, func(io.Writer) error { return nil })
	require.Error(t, err)
}

func writeString(s string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)

		return err
	}
}

func TestBatch_CommitPublishesAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	batch := export.NewBatch()

	n, err := batch.Add(a, writeString("alpha"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = batch.Add(b, writeString("beta"))
	require.NoError(t, err)

	assert.NoFileExists(t, a, "nothing is visible before commit")
	require.NoError(t, batch.Commit())
	batch.Discard()

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	data, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestBatch_DiscardAfterFailedAdd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batch := export.NewBatch()

	reserved, err := batch.Reserve(dir, "chart-*.html")
	require.NoError(t, err)
	assert.FileExists(t, reserved)

	_, err = batch.Add(filepath.Join(dir, "a.csv"), writeString("alpha"))
	require.NoError(t, err)

	_, err = batch.Add(filepath.Join(dir, "absent", "b.csv"), writeString("beta"))
	require.Error(t, err)

	batch.Discard()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBatch_FailedCommitRemovesCreatedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	blocked := filepath.Join(dir, "blocked")

	require.NoError(t, os.Mkdir(blocked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocked, "keep"), []byte("x"), 0o600))

	batch := export.NewBatch()

	_, err := batch.Add(a, writeString("alpha"))
	require.NoError(t, err)

	_, err = batch.Add(blocked, writeString("beta"))
	require.NoError(t, err)

	require.Error(t, batch.Commit())
	batch.Discard()

	assert.NoFileExists(t, a)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the pre-existing directory remains")
	assert.Equal(t, "blocked", entries[0].Name())
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	codec, err := export.CodecFor("run.JSON")
	require.NoError(t, err)
	assert.Equal(t, ".json", codec.Extension())

	codec, err = export.CodecFor("run.yml")
	require.NoError(t, err)
	assert.Equal(t, ".yaml", codec.Extension())

	_, err = export.CodecFor("run.toml")
	require.ErrorIs(t, err, export.ErrUnknownSummaryFormat)
}

func TestSummary_RoundTrip(t *testing.T) {
	t.Parallel()

	sum := &export.Summary{
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		InputDir:    "data",
		Pattern:     "time_series_*.csv",
		Files: []export.FileSummary{
			export.FileSummaryOf(series.Series{
				Source: "time_series_a.csv",
				Metric: "Cargo Pants",
				Points: []series.Point{{Time: month(time.January), Value: 1}},
				Stats:  series.Stats{RowsRead: 3, DroppedTimestamps: 1, Duplicates: 1},
			}),
		},
		MergedRows: 1,
		Metrics:    []string{"Cargo Pants"},
		Continuity: export.ContinuitySummary{Checked: true, Continuous: false, Expected: 3, Missing: []string{"2020-02"}},
		ZeroShares: map[string]float64{"Cargo Pants": 0},
		Outputs:    []string{"trends_merged_GB_monthly.csv"},
	}

	for _, name := range []string{"summary.json", "summary.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, export.SaveSummary(path, sum))

			got, err := export.LoadSummary(path)
			require.NoError(t, err)

			assert.True(t, sum.GeneratedAt.Equal(got.GeneratedAt))
			assert.Equal(t, sum.Files, got.Files)
			assert.Equal(t, sum.Continuity, got.Continuity)
			assert.Equal(t, sum.ZeroShares, got.ZeroShares)
			assert.Equal(t, sum.Outputs, got.Outputs)
			assert.Equal(t, 1, got.Files[0].Rows)
		})
	}
}

func TestSaveSummary_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := export.SaveSummary(filepath.Join(t.TempDir(), "summary.txt"), &export.Summary{})
	require.ErrorIs(t, err, export.ErrUnknownSummaryFormat)
}

func TestLoadSummary_RejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "missing continuity",
			file:    "summary.json",
			content: `{"generated_at":"2024-05-01T12:00:00Z","files":[],"merged_rows":0,"metrics":[],"outputs":[]}`,
		},
		{
			name: "negative rows",
			file: "summary.yaml",
			content: "generated_at: 2024-05-01T12:00:00Z\nfiles: []\nmerged_rows: -1\nmetrics: []\n" +
				"continuity: {checked: true, empty: false, continuous: true, expected: 0}\noutputs: []\n",
		},
		{
			name: "bad month label",
			file: "summary.json",
			content: `{"generated_at":"2024-05-01T12:00:00Z","files":[],"merged_rows":2,"metrics":["A"],` +
				`"continuity":{"checked":true,"empty":false,"continuous":false,"expected":3,"missing":["Feb 2020"]},"outputs":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := export.LoadSummary(path)
			require.ErrorIs(t, err, export.ErrInvalidSummary)
		})
	}
}

func TestValidateSummary_AcceptsMinimalDocument(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"generated_at": "2024-05-01T12:00:00Z",
		"files":        nil,
		"merged_rows":  0,
		"metrics":      nil,
		"continuity":   map[string]any{"checked": false, "empty": true, "continuous": true, "expected": 0},
		"outputs":      []string{"a.csv"},
	}

	require.NoError(t, export.ValidateSummary(doc))
}
