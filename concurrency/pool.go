package concurrency

import (
	"context"
	"runtime"
	"sync"
)

// Task processes the item at index. A non-nil error stops the pool from
// dispatching further items.
type Task func(ctx context.Context, index int) error

// Pool runs indexed tasks on a fixed number of workers fed from one queue.
type Pool struct {
	size int
}

// NewPool creates a pool with size workers. A size of zero or less uses one
// worker per available CPU.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{size: size}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run dispatches indices 0..n-1 to the workers and returns once every
// dispatched task has finished. Dispatching stops early when a task fails or ctx
// is done; tasks already running are waited for, tasks not yet dispatched are
// never started. Run returns the number of dispatched tasks together with the
// first task error, or ctx's error if the context ended the run.
func (p *Pool) Run(ctx context.Context, n int, task Task) (int, error) {
	if n <= 0 {
		return 0, ctx.Err()
	}

	workers := p.size
	if n < workers {
		workers = n
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	stop := make(chan struct{})
	queue := make(chan int)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range queue {
				if err := task(ctx, index); err != nil {
					once.Do(func() {
						firstErr = err
						close(stop)
					})
				}
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := 0; i < n; i++ {
		// Check stop conditions first so a ready worker never wins against them.
		select {
		case <-stop:
			break dispatch
		case <-ctx.Done():
			break dispatch
		default:
		}

		select {
		case <-stop:
			break dispatch
		case <-ctx.Done():
			break dispatch
		case queue <- i:
			dispatched++
		}
	}
	close(queue)
	wg.Wait()

	if firstErr != nil {
		return dispatched, firstErr
	}
	if dispatched < n {
		return dispatched, ctx.Err()
	}
	return dispatched, nil
}

// Semaphore bounds concurrent access to a resource.
type Semaphore struct {
	tickets chan struct{}
}

// NewSemaphore creates a semaphore with capacity tickets.
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 1
	}
	return &Semaphore{tickets: make(chan struct{}, capacity)}
}

// Acquire blocks until a ticket is free or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.tickets <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a ticket.
func (s *Semaphore) Release() {
	<-s.tickets
}
