package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

// ErrFileTooLarge is returned when an export exceeds the configured size limit.
var ErrFileTooLarge = errors.New("input file too large")

// Loader reads and normalizes exports one at a time.
type Loader struct {
	// MaxFileSize rejects larger files. Zero disables the check.
	MaxFileSize uint64
	// Logger receives per-file debug records. Nil uses slog.Default().
	Logger *slog.Logger
}

// Load reads the export at path and returns its canonical series.
// The series Source is the file's base name.
func (l Loader) Load(path string) (series.Series, error) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		return series.Series{}, fmt.Errorf("stat %s: %w", name, err)
	}

	if l.MaxFileSize > 0 && uint64(info.Size()) > l.MaxFileSize {
		return series.Series{}, fmt.Errorf("%w: %s is %s, limit %s", ErrFileTooLarge, name,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(l.MaxFileSize))
	}

	file, err := os.Open(path)
	if err != nil {
		return series.Series{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	raw, err := series.ReadRaw(file, name)
	if err != nil {
		return series.Series{}, err
	}

	s, err := series.Normalize(raw)
	if err != nil {
		return series.Series{}, err
	}

	l.logger().Debug("normalized export",
		"file", name,
		"metric", s.Metric,
		"rows", s.Len(),
		"dropped_timestamps", s.Stats.DroppedTimestamps,
		"missing_values", s.Stats.MissingValues,
		"duplicates", s.Stats.Duplicates,
	)

	return s, nil
}

// LoadAll loads every path in order and stops at the first failure.
func (l Loader) LoadAll(paths []string) ([]series.Series, error) {
	out := make([]series.Series, 0, len(paths))

	for _, p := range paths {
		s, err := l.Load(p)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

func (l Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}

	return slog.Default()
}
