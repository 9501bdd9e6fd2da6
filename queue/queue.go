// Package queue provides the work queue feeding file paths to the worker
// pool.
//
// The queue is an unbounded FIFO with explicit completion accounting: every
// item added with [Queue.Put] must eventually be acknowledged with
// [Queue.TaskDone] by the goroutine that retrieved it, and [Queue.Join]
// blocks until every item has been acknowledged. A momentarily empty queue
// does not mean work has finished; the acknowledgment count is the only
// completion signal.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Get once the queue has been closed and drained.
var ErrClosed = errors.New("queue: closed")

// errTooManyDone is returned by TaskDone when called more times than Put.
var errTooManyDone = errors.New("queue: TaskDone called more times than Put")

// Queue is an internally synchronized joinable FIFO of file paths. The zero
// value is not usable; call New.
type Queue struct {
	mu         sync.Mutex
	cond       *sync.Cond
	items      []string
	unfinished int
	closed     bool
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put appends an item and increments the count of unfinished work. It fails
// once the queue has been closed.
func (q *Queue) Put(item string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.unfinished++
	q.cond.Broadcast()
	return nil
}

// Get blocks until an item is available, the queue is closed with no items
// remaining, or the context is canceled.
func (q *Queue) Get(ctx context.Context) (string, error) {
	// Wake any waiter when the caller goes away; Wait cannot observe the
	// context on its own.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return "", ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		q.cond.Wait()
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// TaskDone marks one previously retrieved item as fully processed. Every
// retrieved item must be acknowledged exactly once, even when processing it
// failed, or Join will block forever.
func (q *Queue) TaskDone() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		return errTooManyDone
	}
	q.unfinished--
	if q.unfinished == 0 {
		q.cond.Broadcast()
	}
	return nil
}

// Join blocks until every item added with Put has been acknowledged with
// TaskDone, or the context is canceled.
func (q *Queue) Join(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.unfinished > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.cond.Wait()
	}
	return nil
}

// Close rejects further Put calls and releases blocked Get callers once the
// remaining items are drained. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len reports the number of items waiting to be retrieved.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
