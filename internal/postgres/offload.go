package postgres

import (
	"context"
	"sync"
)

// SerialRunner executes submitted tasks one at a time, in submission order,
// on a single dedicated goroutine. It serializes side effects that must not
// interleave, such as mirror writes that have to land in commit order.
type SerialRunner struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// NewSerialRunner starts the runner's worker goroutine.
func NewSerialRunner() *SerialRunner {
	r := &SerialRunner{tasks: make(chan func(), 64)}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for task := range r.tasks {
			task()
		}
	}()
	return r
}

// Do submits fn and blocks until it has run, or until ctx is done.
func (r *SerialRunner) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case r.tasks <- func() { done <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit enqueues fn without waiting for completion.
func (r *SerialRunner) Submit(fn func()) {
	r.tasks <- fn
}

// Close stops accepting tasks and waits for queued ones to finish.
func (r *SerialRunner) Close() {
	r.once.Do(func() { close(r.tasks) })
	r.wg.Wait()
}

// RunBatch fans jobs out across a bounded pool of workers and gathers the
// results in input order. The first job error cancels the remaining jobs
// and is returned.
func RunBatch[R any](ctx context.Context, workers int, jobs []func() (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]R, len(jobs))
	errs := make(chan error, len(jobs))
	sem := make(chan struct{}, workers)

	// A failing job buffers its error before cancelling ctx. Every exit
	// path drains errs first so the job error, not the cancellation it
	// caused, is what callers see.
	firstErr := func() error {
		select {
		case err := <-errs:
			return err
		default:
			return ctx.Err()
		}
	}

	var wg sync.WaitGroup
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, firstErr()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, job func() (R, error)) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := job()
			if err != nil {
				errs <- err
				cancel()
				return
			}
			results[i] = res
		}(i, job)
	}
	wg.Wait()

	if err := firstErr(); err != nil {
		return nil, err
	}
	return results, nil
}
