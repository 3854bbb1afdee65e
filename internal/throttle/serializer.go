package throttle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is delivered to tasks that were still queued when the serializer
// shut down.
var ErrClosed = errors.New("throttle: serializer closed")

// Task is a unit of work executed by the serializer. The context passed to
// Enqueue is handed through unchanged.
type Task func(ctx context.Context) error

type pending struct {
	ctx  context.Context
	run  Task
	done chan error
}

// Serializer executes tasks strictly in enqueue order, at most one at a time.
// A single worker goroutine pulls from the queue; after every completion it
// waits the configured delay before starting the next task. A task's failure
// is delivered only to its own caller and never stops the worker.
type Serializer struct {
	delay atomic.Int64 // nanoseconds

	mu     sync.Mutex
	queue  []*pending
	closed bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New constructs a serializer with the given inter-task delay and starts its
// worker. Callers must Close it when finished.
func New(delay time.Duration) *Serializer {
	s := &Serializer{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.SetDelay(delay)
	go s.work()
	return s
}

// SetDelay changes the minimum idle time between task completions. It applies
// to tasks started after the call; the in-flight task and its trailing pause
// are unaffected.
func (s *Serializer) SetDelay(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	s.delay.Store(int64(delay))
}

// Delay reports the currently configured inter-task delay.
func (s *Serializer) Delay() time.Duration {
	return time.Duration(s.delay.Load())
}

// Enqueue appends a task to the queue and returns a channel that receives the
// task's error (or nil) exactly once. Enqueue never fails synchronously: a nil
// task or a closed serializer is reported through the channel.
func (s *Serializer) Enqueue(ctx context.Context, task Task) <-chan error {
	done := make(chan error, 1)
	if task == nil {
		done <- errors.New("throttle: nil task")
		return done
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- ErrClosed
		return done
	}
	s.queue = append(s.queue, &pending{ctx: ctx, run: task, done: done})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return done
}

// Do enqueues the task and blocks until its result is delivered.
func (s *Serializer) Do(ctx context.Context, task Task) error {
	return <-s.Enqueue(ctx, task)
}

// Close stops the worker after the in-flight task finishes. Tasks still queued
// receive ErrClosed. Close is idempotent and blocks until the worker exits.
func (s *Serializer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
}

func (s *Serializer) work() {
	defer close(s.done)
	for {
		p, ok := s.next()
		if !ok {
			s.failQueued()
			return
		}

		var err error
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else {
			err = runTask(p.ctx, p.run)
		}
		p.done <- err

		if !s.pause() {
			s.failQueued()
			return
		}
	}
}

// next blocks until a task is available or the serializer is closed.
func (s *Serializer) next() (*pending, bool) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, false
		}
		if len(s.queue) > 0 {
			p := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return p, true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-s.stop:
			return nil, false
		}
	}
}

// pause waits the configured delay before the next task may start. Returns
// false when the serializer shut down during the pause.
func (s *Serializer) pause() bool {
	delay := s.Delay()
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.stop:
		return false
	}
}

// failQueued delivers ErrClosed to every task left in the queue.
func (s *Serializer) failQueued() {
	s.mu.Lock()
	remaining := s.queue
	s.queue = nil
	s.mu.Unlock()
	for _, p := range remaining {
		p.done <- ErrClosed
	}
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("throttle: task panicked: %v", r)
		}
	}()
	return task(ctx)
}
