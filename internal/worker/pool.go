// Package worker runs store mutations and collaborator calls on a small
// fixed-size pool of goroutines.
//
// Submissions are fire-and-forget by default: the pool logs failures and
// the caller moves on. Every submission still returns a [Future], so a
// caller that does care can wait for completion or inspect the error.
package worker

import (
	"fmt"
	"log/slog"
	"sync"
)

// Future is the completion handle of one submitted function.
type Future struct {
	done chan struct{}
	err  error
}

// Wait blocks until the function has run and returns its error.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// Done returns a channel closed when the function has run.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

type task struct {
	name   string
	fn     func() error
	future *Future
}

// queueDepth bounds the backlog of submitted-but-unstarted tasks.
const queueDepth = 64

// Pool executes submitted functions on a fixed number of workers.
type Pool struct {
	tasks chan task
	wg    sync.WaitGroup
	log   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool starts a pool of n workers. n must be at least 1.
func NewPool(n int, log *slog.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{
		tasks: make(chan task, queueDepth),
		log:   log,
	}
	p.wg.Add(n)
	for range n {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.future.err = t.fn()
		if t.future.err != nil {
			p.log.Error("background task failed", "task", t.name, "err", t.future.err)
		}
		close(t.future.done)
	}
}

// Submit queues fn for execution and returns its future. Queued work is
// bounded: Submit returns immediately while there is queue room and
// blocks only once every worker is busy and the queue is full.
// Submitting to a closed pool completes the future immediately with an
// error instead of running fn.
func (p *Pool) Submit(name string, fn func() error) *Future {
	f := &Future{done: make(chan struct{})}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		f.err = fmt.Errorf("pool is closed, dropping task %q", name)
		p.log.Error("background task dropped", "task", name, "err", f.err)
		close(f.done)
		return f
	}
	p.tasks <- task{name: name, fn: fn, future: f}
	p.mu.Unlock()
	return f
}

// Close stops accepting work and waits for queued tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
