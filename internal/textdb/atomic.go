package textdb

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Swapped out by tests to fail a rewrite partway through.
var (
	createTemp = os.CreateTemp
	renameFile = os.Rename
)

// writeLinesAtomic replaces the file at path with the given lines, each
// followed by a newline. The content is written to a temp file in the
// same directory and renamed over the original, so a concurrent reader
// sees either the old content or the new, never a partial write. On
// failure the original file is left untouched.
func writeLinesAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	tmp, err := createTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return errors.Join(fmt.Errorf("failed to write line: %w", err), tmp.Close(), os.Remove(tmpPath))
		}
		if err := w.WriteByte('\n'); err != nil {
			return errors.Join(fmt.Errorf("failed to write newline: %w", err), tmp.Close(), os.Remove(tmpPath))
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Join(fmt.Errorf("failed to flush temp file: %w", err), tmp.Close(), os.Remove(tmpPath))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}
	if err := renameFile(tmpPath, path); err != nil {
		return errors.Join(fmt.Errorf("failed to rename temp file over %s: %w", path, err), os.Remove(tmpPath))
	}
	return nil
}
