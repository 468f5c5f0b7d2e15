// Package queue hands work to a single background goroutine without ever
// blocking the producer.
package queue

import (
	"sync"
	"sync/atomic"
)

// Dropping is a bounded FIFO drained by one goroutine. Offer never blocks:
// when the buffer is full the item is discarded and counted.
type Dropping[T any] struct {
	handle func(T)

	mu      sync.RWMutex
	closed  bool
	items   chan T
	done    chan struct{}
	dropped atomic.Int64
}

// NewDropping starts the goroutine that calls handle for each queued item in
// order. Close must be called to stop it.
func NewDropping[T any](size int, handle func(T)) *Dropping[T] {
	if size <= 0 {
		size = 1
	}
	q := &Dropping[T]{
		handle: handle,
		items:  make(chan T, size),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// Offer enqueues item. It reports false when item was dropped because the
// buffer was full; items offered after Close are ignored.
func (q *Dropping[T]) Offer(item T) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return true
	}
	select {
	case q.items <- item:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

func (q *Dropping[T]) run() {
	defer close(q.done)
	for item := range q.items {
		q.handle(item)
	}
}

// Dropped returns how many items were discarded.
func (q *Dropping[T]) Dropped() int64 { return q.dropped.Load() }

// Close stops accepting items and waits until queued ones are handled.
func (q *Dropping[T]) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.items)
	}
	q.mu.Unlock()
	<-q.done
}
