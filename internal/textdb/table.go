package textdb

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Table stores records of one type as delimited lines in a single file.
//
// The file is the source of truth: every read re-scans it in full, and
// callers get the records in file order. All mutations hold the table
// lock for their entire read-modify-write cycle; full-file rewrites are
// atomic via temp-file-then-rename.
type Table[T Record] struct {
	path  string
	codec Codec[T]
	log   *slog.Logger
	mu    sync.RWMutex
}

// NewTable creates a table backed by the file at path, creating the file
// and its directory if they do not exist.
func NewTable[T Record](path string, codec Codec[T], log *slog.Logger) (*Table[T], error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create table file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close table file %s: %w", path, err)
	}
	return &Table[T]{path: path, codec: codec, log: log}, nil
}

// Path returns the backing file path.
func (t *Table[T]) Path() string {
	return t.path
}

// All decodes every line of the backing file and returns the records in
// file order. Malformed lines are logged and skipped; a single corrupt
// line never aborts loading the rest.
func (t *Table[T]) All() ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines, err := t.readLines()
	if err != nil {
		return nil, err
	}
	records := make([]T, 0, len(lines))
	for _, line := range lines {
		rec, err := t.codec.Decode(line)
		if err != nil {
			t.log.Warn("skipping malformed line", "file", t.path, "line", line, "err", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns the first record whose ID matches, or [ErrNotFound].
func (t *Table[T]) Get(id int64) (T, error) {
	var zero T
	records, err := t.All()
	if err != nil {
		return zero, err
	}
	for _, rec := range records {
		if rec.RecordID() == id {
			return rec, nil
		}
	}
	return zero, fmt.Errorf("%w: id %d in %s", ErrNotFound, id, t.path)
}

// Append encodes the record and appends it as one line to the backing
// file. The record's ID must already be assigned.
func (t *Table[T]) Append(rec T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open table file for append: %w", err)
	}
	_, werr := f.WriteString(t.codec.Encode(rec) + "\n")
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("failed to append record: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("failed to close table file: %w", cerr)
	}
	return nil
}

// UpdateField replaces exactly one positional field of the line whose ID
// matches, leaving every other line byte-identical. Column 0 holds the ID
// and cannot be changed. Returns [ErrNotFound] if no line matches.
func (t *Table[T]) UpdateField(id int64, col int, value string) error {
	if col < 1 {
		return fmt.Errorf("column %d is not updatable", col)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.readLines()
	if err != nil {
		return err
	}
	found := false
	for i, line := range lines {
		if !matchesID(line, id) {
			continue
		}
		parts := strings.Split(line, Delimiter)
		if col >= len(parts) {
			return fmt.Errorf("column %d out of range for line %q", col, line)
		}
		parts[col] = value
		lines[i] = strings.Join(parts, Delimiter)
		found = true
		break
	}
	if !found {
		return fmt.Errorf("%w: id %d in %s", ErrNotFound, id, t.path)
	}
	return writeLinesAtomic(t.path, lines)
}

// UpdateRecord re-encodes the record and replaces the line whose ID
// matches. Returns [ErrNotFound] if no line matches.
func (t *Table[T]) UpdateRecord(rec T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.readLines()
	if err != nil {
		return err
	}
	found := false
	for i, line := range lines {
		if matchesID(line, rec.RecordID()) {
			lines[i] = t.codec.Encode(rec)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: id %d in %s", ErrNotFound, rec.RecordID(), t.path)
	}
	return writeLinesAtomic(t.path, lines)
}

// Delete rewrites the file omitting every line whose ID matches, leaving
// the remaining lines byte-identical and in their original order.
// Returns [ErrNotFound] if no line matches.
func (t *Table[T]) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.readLines()
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if !matchesID(line, id) {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(lines) {
		return fmt.Errorf("%w: id %d in %s", ErrNotFound, id, t.path)
	}
	return writeLinesAtomic(t.path, kept)
}

// DeleteWhere rewrites the file omitting lines whose decoded record
// matches the predicate, up to limit lines (no limit if negative).
// Undecodable lines are always kept. Returns the number removed.
func (t *Table[T]) DeleteWhere(limit int, match func(T) bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.readLines()
	if err != nil {
		return 0, err
	}
	removed := 0
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if limit < 0 || removed < limit {
			if rec, err := t.codec.Decode(line); err == nil && match(rec) {
				removed++
				continue
			}
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, writeLinesAtomic(t.path, kept)
}

// readLines returns the raw non-empty lines of the backing file. The
// caller must hold the table lock.
func (t *Table[T]) readLines() ([]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open table file %s: %w", t.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}
	return lines, nil
}

// matchesID reports whether the raw line's first field equals id.
func matchesID(line string, id int64) bool {
	return strings.HasPrefix(line, strconv.FormatInt(id, 10)+Delimiter)
}
