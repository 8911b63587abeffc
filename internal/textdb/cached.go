package textdb

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CachedTable is the inverted variant of [Table]: a full in-memory mirror
// populated by one scan at construction is the source of truth at
// runtime, and the file is just a snapshot. Every mutation hits the
// mirror first and then persists the entire mirror back; reads are served
// from memory without touching the file.
type CachedTable[T Record] struct {
	path  string
	codec Codec[T]
	log   *slog.Logger

	mu   sync.RWMutex
	byID map[int64]T
}

// NewCachedTable creates a cached table backed by the file at path,
// creating the file and its directory if they do not exist, and loads
// the mirror.
func NewCachedTable[T Record](path string, codec Codec[T], log *slog.Logger) (*CachedTable[T], error) {
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
	t := &CachedTable[T]{path: path, codec: codec, log: log}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the backing file path.
func (t *CachedTable[T]) Path() string {
	return t.path
}

// Reload replaces the mirror with the current file content. Malformed
// lines are logged and skipped.
func (t *CachedTable[T]) Reload() error {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.mu.Lock()
			t.byID = map[int64]T{}
			t.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to open table file %s: %w", t.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	byID := map[int64]T{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		rec, err := t.codec.Decode(line)
		if err != nil {
			t.log.Warn("skipping malformed line", "file", t.path, "line", line, "err", err)
			continue
		}
		byID[rec.RecordID()] = rec
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}

	t.mu.Lock()
	t.byID = byID
	t.mu.Unlock()
	return nil
}

// Len returns the number of records in the mirror.
func (t *CachedTable[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byID)
}

// All returns the mirrored records ordered by ID.
func (t *CachedTable[T]) All() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]int64, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	records := make([]T, 0, len(ids))
	for _, id := range ids {
		records = append(records, t.byID[id])
	}
	return records
}

// Get returns the mirrored record with the given ID, or [ErrNotFound].
func (t *CachedTable[T]) Get(id int64) (T, error) {
	t.mu.RLock()
	rec, ok := t.byID[id]
	t.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: id %d in %s", ErrNotFound, id, t.path)
	}
	return rec, nil
}

// Put inserts or replaces a record in the mirror and snapshots the whole
// mirror to the file.
func (t *CachedTable[T]) Put(rec T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[rec.RecordID()] = rec
	return t.snapshotLocked()
}

// Update applies fn to the mirrored record with the given ID, stores the
// result and snapshots. Returns [ErrNotFound] if the ID is absent; if fn
// fails, neither the mirror nor the file changes.
func (t *CachedTable[T]) Update(id int64, fn func(T) (T, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("%w: id %d in %s", ErrNotFound, id, t.path)
	}
	updated, err := fn(rec)
	if err != nil {
		return err
	}
	t.byID[id] = updated
	return t.snapshotLocked()
}

// Delete removes the record from the mirror and snapshots. Returns
// [ErrNotFound] if the ID is absent.
func (t *CachedTable[T]) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return fmt.Errorf("%w: id %d in %s", ErrNotFound, id, t.path)
	}
	delete(t.byID, id)
	return t.snapshotLocked()
}

// snapshotLocked persists the entire mirror, ordered by ID for a
// deterministic file. The caller must hold the write lock.
func (t *CachedTable[T]) snapshotLocked() error {
	ids := make([]int64, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, t.codec.Encode(t.byID[id]))
	}
	return writeLinesAtomic(t.path, lines)
}

// Watch reloads the mirror whenever the backing file changes on disk,
// until ctx is done. Reloading after our own snapshot is harmless since
// the file already equals the mirror; the debounce collapses event
// bursts from the rename-based rewrite.
func (t *CachedTable[T]) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(t.path), err)
	}

	var debounce *time.Timer
	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != filepath.Base(t.path) {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(100 * time.Millisecond)
				reload = debounce.C
			} else {
				debounce.Reset(100 * time.Millisecond)
			}
		case <-reload:
			debounce = nil
			reload = nil
			if err := t.Reload(); err != nil {
				t.log.Warn("failed to reload table", "file", t.path, "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.log.Warn("watcher error", "file", t.path, "err", err)
		}
	}
}
