package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// filePerm is the permission of written outputs.
const filePerm = 0o644

// WriteFile writes the output of write to path through a temporary file in
// the same directory, renaming it into place only when write succeeds.
// It returns the number of bytes written.
func WriteFile(path string, write func(io.Writer) error) (int64, error) {
	tmpPath, n, err := stageFile(path, write)
	if err != nil {
		return 0, err
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		_ = os.Remove(tmpPath)

		return 0, fmt.Errorf("rename %s: %w", path, err)
	}

	return n, nil
}

// stageFile writes a complete temporary file next to path and returns its name.
func stageFile(path string, write func(io.Writer) error) (string, int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file for %s: %w", path, err)
	}

	tmpPath := tmp.Name()

	counter := &countingWriter{w: tmp}
	buffered := bufio.NewWriter(counter)

	writeErr := write(buffered)
	if writeErr == nil {
		writeErr = buffered.Flush()
	}

	closeErr := tmp.Close()

	err = errors.Join(writeErr, closeErr)
	if err != nil {
		_ = os.Remove(tmpPath)

		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}

	err = os.Chmod(tmpPath, filePerm)
	if err != nil {
		_ = os.Remove(tmpPath)

		return "", 0, fmt.Errorf("chmod %s: %w", path, err)
	}

	return tmpPath, counter.n, nil
}

// Batch publishes several outputs together. Add writes each one to a
// temporary file beside its destination; nothing appears at a destination
// until Commit. Discard drops everything staged or reserved.
type Batch struct {
	staged    []stagedFile
	reserved  []string
	committed bool
}

type stagedFile struct {
	tmp  string
	path string
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Reserve creates an empty file in dir named after pattern, as os.CreateTemp
// does, for use as a destination. Discard removes it.
func (b *Batch) Reserve(dir, pattern string) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("reserve %s: %w", pattern, err)
	}

	b.reserved = append(b.reserved, f.Name())

	err = f.Close()
	if err != nil {
		return "", fmt.Errorf("reserve %s: %w", pattern, err)
	}

	return f.Name(), nil
}

// Add stages the output of write for path and returns its size in bytes.
func (b *Batch) Add(path string, write func(io.Writer) error) (int64, error) {
	tmpPath, n, err := stageFile(path, write)
	if err != nil {
		return 0, err
	}

	b.staged = append(b.staged, stagedFile{tmp: tmpPath, path: path})

	return n, nil
}

// Commit renames every staged file into place in the order added. If a
// rename fails, destinations this commit created are removed again and
// the remaining temporary files are dropped.
func (b *Batch) Commit() error {
	var created []string

	for i, f := range b.staged {
		_, statErr := os.Lstat(f.path)
		existed := statErr == nil

		err := os.Rename(f.tmp, f.path)
		if err != nil {
			for _, path := range created {
				_ = os.Remove(path)
			}

			for _, rest := range b.staged[i:] {
				_ = os.Remove(rest.tmp)
			}

			b.staged = nil

			return fmt.Errorf("rename %s: %w", f.path, err)
		}

		if !existed {
			created = append(created, f.path)
		}
	}

	b.staged = nil
	b.committed = true

	return nil
}

// Discard removes staged temporary files and reserved files. It does
// nothing after a successful Commit.
func (b *Batch) Discard() {
	if b.committed {
		return
	}

	for _, f := range b.staged {
		_ = os.Remove(f.tmp)
	}

	for _, path := range b.reserved {
		_ = os.Remove(path)
	}

	b.staged = nil
	b.reserved = nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}
