// Package taskqueue runs keyed tasks one at a time, in submission order, on a
// single scheduler goroutine.
//
// A task that is still waiting when another task with the same key is
// enqueued is superseded: it never runs and its caller receives nil. A
// running task can ask whether it has been superseded in the meantime and
// skip committing its result.
package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrClosed is returned for tasks that were still pending when the queue
	// was closed, and for tasks enqueued afterwards.
	ErrClosed = errors.New("task queue closed")
	// ErrHalted is returned, wrapping the original failure, for every task
	// that follows a failed task in strict mode.
	ErrHalted = errors.New("task queue halted")
)

// RunFunc is the body of a task. stale reports whether a newer task with the
// same key has been enqueued since this one started.
type RunFunc func(ctx context.Context, stale func() bool) error

type task struct {
	key  string
	gen  uint64
	ctx  context.Context
	run  RunFunc
	done chan error
}

// Queue is a FIFO of keyed tasks drained by one goroutine.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []*task
	latest  map[string]uint64
	gen     uint64
	paused  int
	strict  bool
	halted  error
	closed  bool
	stopped chan struct{}
}

// Option configures a Queue.
type Option func(*Queue)

// WithStrict makes the first task failure halt the queue.
func WithStrict(strict bool) Option {
	return func(q *Queue) {
		q.strict = strict
	}
}

// New starts a queue. Close must be called to stop its goroutine.
func New(opts ...Option) *Queue {
	q := &Queue{
		latest:  make(map[string]uint64),
		stopped: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)

	for _, opt := range opts {
		opt(q)
	}

	go q.loop()

	return q
}

// Enqueue schedules run under key. The returned channel receives the task's
// result exactly once. The task runs with ctx stripped of its cancellation.
func (q *Queue) Enqueue(ctx context.Context, key string, run RunFunc) <-chan error {
	done := make(chan error, 1)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		done <- ErrClosed
		return done
	}

	q.gen++
	q.latest[key] = q.gen
	q.pending = append(q.pending, &task{
		key:  key,
		gen:  q.gen,
		ctx:  context.WithoutCancel(ctx),
		run:  run,
		done: done,
	})
	q.cond.Signal()

	return done
}

// Do enqueues run and waits for its result or for ctx to end. When ctx ends
// first the task still runs.
func (q *Queue) Do(ctx context.Context, key string, run RunFunc) error {
	return Wait(ctx, q.Enqueue(ctx, key, run))
}

// Wait waits for a result channel returned by Enqueue.
func Wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause stops the scheduler from starting new tasks until the returned
// resume func is called. Pauses nest; the queue restarts when every resume
// func has been called. Calling a resume func twice has no further effect.
func (q *Queue) Pause() func() {
	q.mu.Lock()
	q.paused++
	q.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()

			q.paused--
			if q.paused == 0 {
				q.cond.Broadcast()
			}
		})
	}
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

// Close stops the scheduler after the running task, if any, completes.
// Pending tasks receive ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
	q.mu.Unlock()

	<-q.stopped
}

func (q *Queue) loop() {
	defer close(q.stopped)

	for {
		q.mu.Lock()
		for !q.closed && (len(q.pending) == 0 || q.paused > 0) {
			q.cond.Wait()
		}

		if q.closed {
			pending := q.pending
			q.pending = nil
			q.mu.Unlock()

			for _, t := range pending {
				t.done <- ErrClosed
			}

			return
		}

		t := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		superseded := q.latest[t.key] != t.gen
		halted := q.halted
		q.mu.Unlock()

		switch {
		case superseded:
			slog.Debug("Skipping superseded task", "key", t.key)
			t.done <- nil
		case halted != nil:
			t.done <- halted
		default:
			t.done <- q.execute(t)
		}
	}
}

func (q *Queue) execute(t *task) error {
	err := q.runTask(t)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.latest[t.key] == t.gen {
		delete(q.latest, t.key)
	}

	if err != nil {
		if q.strict {
			q.halted = fmt.Errorf("%w: %s: %w", ErrHalted, t.key, err)
		} else {
			slog.Error("Task failed", "key", t.key, "error", err)
		}
	}

	return err
}

func (q *Queue) runTask(t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.key, r)
		}
	}()

	stale := func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()

		return q.latest[t.key] != t.gen
	}

	return t.run(t.ctx, stale)
}
