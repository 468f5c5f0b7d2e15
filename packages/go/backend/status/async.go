package status

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/queue"
)

// Async moves publishing off the caller's goroutine. When its queue is full
// new events are dropped.
type Async struct {
	next    Publisher
	timeout time.Duration
	logger  *zap.SugaredLogger
	queue   *queue.Dropping[Event]
}

func NewAsync(next Publisher, queueSize int, timeout time.Duration, logger *zap.SugaredLogger) *Async {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	a := &Async{
		next:    next,
		timeout: timeout,
		logger:  logger,
	}
	a.queue = queue.NewDropping(queueSize, a.publish)
	return a
}

// Publish enqueues event and never blocks.
func (a *Async) Publish(_ context.Context, event Event) error {
	a.queue.Offer(event)
	return nil
}

func (a *Async) publish(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.next.Publish(ctx, event); err != nil {
		a.logger.Warnw("failed to publish diagnostic", "stage", event.Stage, "state", event.State, "error", err)
	}
}

// Dropped returns how many events were discarded.
func (a *Async) Dropped() int64 { return a.queue.Dropped() }

// Close flushes queued events and stops the worker.
func (a *Async) Close() error {
	a.queue.Close()
	return nil
}
