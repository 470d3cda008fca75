package conversation

import (
	"context"
	"sync"
)

// Dispatcher runs continuations on the single execution context that owns the session.
// Every result of an asynchronous call re-enters the controller through Dispatch.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Queue is an unbounded FIFO of continuations drained by one goroutine calling Run or
// RunNext. Dispatch never blocks.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	notify  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued continuations.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Next waits for one continuation and returns it without running it. Callers that own
// an event loop use it to run the continuation on their own goroutine.
func (q *Queue) Next(ctx context.Context) (func(), error) {
	for {
		if fn := q.pop(); fn != nil {
			return fn, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// RunNext waits for one continuation and runs it on the calling goroutine.
func (q *Queue) RunNext(ctx context.Context) error {
	fn, err := q.Next(ctx)
	if err != nil {
		return err
	}
	fn()
	return nil
}

// Run drains continuations until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		if err := q.RunNext(ctx); err != nil {
			return err
		}
	}
}

func (q *Queue) pop() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	fn := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return fn
}
