package textdb

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestAllocator(t *testing.T) {
	t.Run("sequential from one", func(t *testing.T) {
		a, err := NewAllocator(filepath.Join(t.TempDir(), "test_id.txt"))
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}
		for want := int64(1); want <= 5; want++ {
			got, err := a.NextID()
			if err != nil {
				t.Fatalf("NextID failed: %v", err)
			}
			if got != want {
				t.Errorf("NextID() = %d, want %d", got, want)
			}
		}
	})

	t.Run("line format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test_id.txt")
		a, err := NewAllocator(path)
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}
		for range 3 {
			if _, err := a.NextID(); err != nil {
				t.Fatalf("NextID failed: %v", err)
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if got, want := string(data), "1|\n2|\n3|\n"; got != want {
			t.Errorf("file content = %q, want %q", got, want)
		}
	})

	t.Run("resumes after restart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test_id.txt")
		a, err := NewAllocator(path)
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}
		for range 4 {
			if _, err := a.NextID(); err != nil {
				t.Fatalf("NextID failed: %v", err)
			}
		}

		// A fresh allocator over the same file must continue, not restart.
		b, err := NewAllocator(path)
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}
		got, err := b.NextID()
		if err != nil {
			t.Fatalf("NextID failed: %v", err)
		}
		if got != 5 {
			t.Errorf("NextID() after restart = %d, want 5", got)
		}
	})

	t.Run("resumes from highest not last", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test_id.txt")
		if err := os.WriteFile(path, []byte("3|\n1|\n2|\n"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		a, err := NewAllocator(path)
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}
		got, err := a.NextID()
		if err != nil {
			t.Fatalf("NextID failed: %v", err)
		}
		if got != 4 {
			t.Errorf("NextID() = %d, want 4", got)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test_id.txt")
		if err := os.WriteFile(path, []byte("1|\nnot-a-number|\n"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		a, err := NewAllocator(path)
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}
		if _, err := a.NextID(); err == nil {
			t.Error("NextID() on corrupt file succeeded, want error")
		}
	})

	t.Run("concurrent allocations are unique", func(t *testing.T) {
		a, err := NewAllocator(filepath.Join(t.TempDir(), "test_id.txt"))
		if err != nil {
			t.Fatalf("NewAllocator failed: %v", err)
		}

		const goroutines = 8
		const perGoroutine = 25
		var mu sync.Mutex
		var ids []int64
		var g errgroup.Group
		for range goroutines {
			g.Go(func() error {
				for range perGoroutine {
					id, err := a.NextID()
					if err != nil {
						return fmt.Errorf("NextID failed: %w", err)
					}
					mu.Lock()
					ids = append(ids, id)
					mu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatal(err)
		}

		slices.Sort(ids)
		for i, id := range ids {
			if id != int64(i+1) {
				t.Fatalf("ids[%d] = %d, want %d (duplicate or gap)", i, id, i+1)
			}
		}
	})
}
