// Package ingest finds the exports to process and loads each one into a
// canonical series.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// ErrInsufficientInputFiles is returned when fewer exports than required are found.
var ErrInsufficientInputFiles = errors.New("insufficient input files")

// InsufficientFilesError reports the discovery result that fell short.
// It unwraps to ErrInsufficientInputFiles.
type InsufficientFilesError struct {
	Dir     string
	Pattern string
	Min     int
	Found   []string
}

func (e *InsufficientFilesError) Error() string {
	names := make([]string, len(e.Found))
	for i, f := range e.Found {
		names[i] = filepath.Base(f)
	}

	return fmt.Sprintf("%v: expected at least %d %s files in %s, found %d: %q",
		ErrInsufficientInputFiles, e.Min, e.Pattern, e.Dir, len(e.Found), names)
}

func (e *InsufficientFilesError) Unwrap() error {
	return ErrInsufficientInputFiles
}

// Discover returns the regular files in dir matching pattern, sorted by
// name. It fails when fewer than minFiles are found.
func Discover(dir, pattern string, minFiles int) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	matches, err := filepath.Glob(filepath.Join(absDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))

	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil {
			return nil, fmt.Errorf("stat %s: %w", m, statErr)
		}

		if info.Mode().IsRegular() {
			files = append(files, m)
		}
	}

	slices.Sort(files)

	if len(files) < minFiles {
		return nil, &InsufficientFilesError{Dir: absDir, Pattern: pattern, Min: minFiles, Found: files}
	}

	return files, nil
}
