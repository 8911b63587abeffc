package worker

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPool(t *testing.T) {
	t.Run("future reports success", func(t *testing.T) {
		p := NewPool(2, testLogger())
		defer p.Close()

		ran := false
		f := p.Submit("ok", func() error {
			ran = true
			return nil
		})
		if err := f.Wait(); err != nil {
			t.Errorf("Wait() = %v, want nil", err)
		}
		if !ran {
			t.Error("submitted function never ran")
		}
	})

	t.Run("future carries the error", func(t *testing.T) {
		p := NewPool(1, testLogger())
		defer p.Close()

		boom := errors.New("boom")
		f := p.Submit("bad", func() error { return boom })
		if err := f.Wait(); !errors.Is(err, boom) {
			t.Errorf("Wait() = %v, want boom", err)
		}
	})

	t.Run("done channel closes", func(t *testing.T) {
		p := NewPool(1, testLogger())
		defer p.Close()

		f := p.Submit("ok", func() error { return nil })
		select {
		case <-f.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("Done() never closed")
		}
	})

	t.Run("all workers run tasks", func(t *testing.T) {
		p := NewPool(4, testLogger())
		defer p.Close()

		var count atomic.Int64
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f := p.Submit("count", func() error {
					count.Add(1)
					return nil
				})
				if err := f.Wait(); err != nil {
					t.Errorf("Wait() = %v, want nil", err)
				}
			}()
		}
		wg.Wait()
		if got := count.Load(); got != 20 {
			t.Errorf("ran %d tasks, want 20", got)
		}
	})

	t.Run("submit does not block while workers are busy", func(t *testing.T) {
		p := NewPool(1, testLogger())
		defer p.Close()

		gate := make(chan struct{})
		first := p.Submit("gated", func() error {
			<-gate
			return nil
		})

		// The single worker is parked on the gate; these must queue
		// without blocking the submitter.
		futures := make([]*Future, 0, 8)
		for range 8 {
			futures = append(futures, p.Submit("queued", func() error { return nil }))
		}

		close(gate)
		if err := first.Wait(); err != nil {
			t.Errorf("Wait() = %v, want nil", err)
		}
		for _, f := range futures {
			if err := f.Wait(); err != nil {
				t.Errorf("Wait() = %v, want nil", err)
			}
		}
	})

	t.Run("close waits for queued work", func(t *testing.T) {
		p := NewPool(1, testLogger())

		done := false
		p.Submit("slow", func() error {
			time.Sleep(50 * time.Millisecond)
			done = true
			return nil
		})
		p.Close()
		if !done {
			t.Error("Close() returned before the task finished")
		}
	})

	t.Run("submit after close fails fast", func(t *testing.T) {
		p := NewPool(1, testLogger())
		p.Close()

		f := p.Submit("late", func() error {
			t.Error("dropped task must not run")
			return nil
		})
		if err := f.Wait(); err == nil {
			t.Error("Wait() = nil, want dropped-task error")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		p := NewPool(1, testLogger())
		p.Close()
		p.Close()
	})
}
