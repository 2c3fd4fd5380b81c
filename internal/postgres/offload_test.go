package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestSerialRunnerOrder(t *testing.T) {
	runner := NewSerialRunner()
	defer runner.Close()

	ctx := context.Background()
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		if err := runner.Do(ctx, func() error {
			got = append(got, i)
			return nil
		}); err != nil {
			t.Fatalf("do %d: %v", i, err)
		}
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran out of order: got %d", i, v)
		}
	}
}

func TestSerialRunnerPropagatesError(t *testing.T) {
	runner := NewSerialRunner()
	defer runner.Close()

	want := errors.New("boom")
	err := runner.Do(context.Background(), func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestSerialRunnerContextCancelled(t *testing.T) {
	runner := NewSerialRunner()
	defer runner.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	runner.Submit(func() { <-block })
	defer close(block)

	err := runner.Do(ctx, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSerialRunnerCloseDrains(t *testing.T) {
	runner := NewSerialRunner()

	var done atomic.Int64
	for i := 0; i < 10; i++ {
		runner.Submit(func() {
			time.Sleep(time.Millisecond)
			done.Add(1)
		})
	}
	runner.Close()

	if got := done.Load(); got != 10 {
		t.Fatalf("drained tasks = %d, want 10", got)
	}
}

func TestRunBatchOrder(t *testing.T) {
	jobs := make([]func() (int, error), 50)
	for i := range jobs {
		i := i
		jobs[i] = func() (int, error) {
			// Later jobs finish first to stress the ordered gather.
			time.Sleep(time.Duration(50-i) * time.Millisecond / 10)
			return i * 2, nil
		}
	}

	results, err := RunBatch(context.Background(), 8, jobs)
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("results = %d, want %d", len(results), len(jobs))
	}
	for i, r := range results {
		if r != i*2 {
			t.Fatalf("result %d = %d, want %d", i, r, i*2)
		}
	}
}

func TestRunBatchFirstErrorWins(t *testing.T) {
	want := errors.New("job failed")
	jobs := []func() (string, error){
		func() (string, error) { return "ok", nil },
		func() (string, error) { return "", want },
		func() (string, error) { return "ok", nil },
	}

	_, err := RunBatch(context.Background(), 1, jobs)
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestRunBatchErrorDuringDispatch(t *testing.T) {
	// A single worker means the failing first job cancels the batch while
	// the dispatcher is still queueing the rest. The job error must still
	// win over the cancellation it triggered.
	want := errors.New("job failed")
	jobs := []func() (string, error){
		func() (string, error) { return "", want },
		func() (string, error) { time.Sleep(10 * time.Millisecond); return "ok", nil },
		func() (string, error) { return "ok", nil },
	}

	_, err := RunBatch(context.Background(), 1, jobs)
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want the job error, not the cancellation", err)
	}
}

func TestRunBatchBoundsWorkers(t *testing.T) {
	const workers = 3
	var active, peak atomic.Int64

	jobs := make([]func() (struct{}, error), 30)
	for i := range jobs {
		jobs[i] = func() (struct{}, error) {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
			return struct{}{}, nil
		}
	}

	if _, err := RunBatch(context.Background(), workers, jobs); err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if p := peak.Load(); p > workers {
		t.Fatalf("peak concurrency = %d, want <= %d", p, workers)
	}
}

func TestRunBatchEmpty(t *testing.T) {
	results, err := RunBatch[int](context.Background(), 4, nil)
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %v, want empty", results)
	}
}

func TestRunBatchZeroWorkers(t *testing.T) {
	jobs := []func() (int, error){
		func() (int, error) { return 1, nil },
		func() (int, error) { return 2, nil },
	}
	results, err := RunBatch(context.Background(), 0, jobs)
	if err != nil {
		t.Fatalf("run batch: %v", err)
	}
	if fmt.Sprint(results) != "[1 2]" {
		t.Fatalf("results = %v", results)
	}
}
