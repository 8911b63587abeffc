package textdb

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Allocator issues monotonically increasing IDs for one record type,
// backed by an append-only companion file holding one "<id>|" line per
// allocated ID. The file is never rewritten or compacted.
//
// The first NextID call scans the whole file once to find the high-water
// mark; the result is cached, so a retry after a failed append skips the
// rescan. A failed append burns the ID: gaps are tolerated, duplicates
// are not. Allocators must not be shared across record types.
type Allocator struct {
	path string

	mu     sync.Mutex
	last   int64
	loaded bool
}

// NewAllocator creates an allocator backed by the file at path, creating
// the file and its directory if they do not exist.
func NewAllocator(path string) (*Allocator, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create allocator file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close allocator file %s: %w", path, err)
	}
	return &Allocator{path: path}, nil
}

// NextID allocates the next ID: it bumps the cached high-water mark,
// appends the new ID to the backing file and returns it. Concurrent
// callers are serialized; two calls never return the same value.
func (a *Allocator) NextID() (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		last, err := a.scanLast()
		if err != nil {
			return 0, err
		}
		a.last = last
		a.loaded = true
	}

	a.last++
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open allocator file for append: %w", err)
	}
	_, werr := fmt.Fprintf(f, "%d|\n", a.last)
	cerr := f.Close()
	if werr != nil {
		return 0, fmt.Errorf("failed to record allocated ID: %w", werr)
	}
	if cerr != nil {
		return 0, fmt.Errorf("failed to close allocator file: %w", cerr)
	}
	return a.last, nil
}

// scanLast reads the whole backing file and returns the highest ID ever
// issued, or 0 for an empty or absent file.
func (a *Allocator) scanLast() (int64, error) {
	f, err := os.Open(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open allocator file %s: %w", a.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var last int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		field, _, _ := strings.Cut(line, "|")
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt allocator file %s: %w", a.path, err)
		}
		if id > last {
			last = id
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read allocator file %s: %w", a.path, err)
	}
	return last, nil
}
