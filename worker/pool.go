// Package worker provides a bounded, process-wide pool for CPU-bound work.
//
// Pipeline stages never run segmentation or inference on the goroutine
// that drives a request. They submit a task to a shared Pool and suspend
// until its result is ready. The pool runs tasks from many concurrent
// requests in parallel; each request keeps at most one task in flight.
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed indicates that the pool has been closed.
var ErrPoolClosed = errors.New("worker: pool closed")

// Pool executes submitted tasks on a fixed set of goroutines.
type Pool struct {
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a pool with size workers. Sizes below 1 default to
// runtime.NumCPU().
func New(size int) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}

	p := &Pool{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case task := <-p.tasks:
					task()
				case <-p.done:
					return
				}
			}
		}()
	}
	return p
}

// submit enqueues a task, blocking until a worker accepts it, the pool is
// closed, or ctx is canceled. The tasks channel is never closed: a sender
// parked here while Close runs unblocks via done instead of panicking.
func (p *Pool) submit(ctx context.Context, task func()) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks and waits for running tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
}

type result[T any] struct {
	value T
	err   error
}

// Future is the pending result of a submitted task.
type Future[T any] struct {
	ch chan result[T]
}

// Wait blocks until the task completes or ctx is canceled. Abandoning a
// future does not stop the task; it runs to completion on its worker.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case r := <-f.ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit schedules fn on the pool and returns a Future for its result.
// Submit blocks until a worker is free, which bounds the amount of work
// queued by any one producer.
func Submit[T any](ctx context.Context, p *Pool, fn func() (T, error)) (*Future[T], error) {
	f := &Future[T]{ch: make(chan result[T], 1)}
	err := p.submit(ctx, func() {
		value, err := fn()
		f.ch <- result[T]{value: value, err: err}
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Do runs fn on the pool and waits for its result.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	f, err := Submit(ctx, p, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.Wait(ctx)
}
