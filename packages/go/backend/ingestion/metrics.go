package ingestion

import (
	"context"
	"sync/atomic"
	"time"

	"lenslation/packages/go/backend/media"
)

type streamCounters struct {
	received  atomic.Int64
	dropped   atomic.Int64
	errors    atomic.Int64
	reconnect atomic.Int64
	sequence  atomic.Int64
}

func (c *streamCounters) snapshot() StreamMetrics {
	return StreamMetrics{
		ReceivedFrames: c.received.Load(),
		DroppedFrames:  c.dropped.Load(),
		ErrorCount:     c.errors.Load(),
		ReconnectCount: c.reconnect.Load(),
		LastSequence:   c.sequence.Load(),
	}
}

// emit hands frame to the consumer. Live sources drop instead of blocking so
// a slow pipeline sees the newest frames. It reports false once ctx ends.
func (c *streamCounters) emit(ctx context.Context, frames chan<- media.TimedFrame, frame media.TimedFrame, dropWhenFull bool) bool {
	if dropWhenFull {
		select {
		case <-ctx.Done():
			return false
		case frames <- frame:
			c.accepted(frame.Sequence)
		default:
			c.dropped.Add(1)
		}
		return true
	}

	select {
	case <-ctx.Done():
		return false
	case frames <- frame:
		c.accepted(frame.Sequence)
		return true
	}
}

func (c *streamCounters) accepted(sequence int64) {
	c.received.Add(1)
	c.sequence.Store(sequence)
}

// report records err and forwards it without blocking.
func (c *streamCounters) report(errs chan<- error, err error) {
	c.errors.Add(1)
	select {
	case errs <- err:
	default:
	}
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
