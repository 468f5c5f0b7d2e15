// Package ingestion supplies frames to the pipeline: replayed image files,
// generated test patterns and polled camera snapshots.
package ingestion

import (
	"context"

	"lenslation/packages/go/backend/media"
)

// StreamMetrics captures aggregated statistics about a frame source.
type StreamMetrics struct {
	ReceivedFrames int64 `json:"receivedFrames"`
	DroppedFrames  int64 `json:"droppedFrames"`
	ErrorCount     int64 `json:"errorCount"`
	ReconnectCount int64 `json:"reconnectCount"`
	LastSequence   int64 `json:"lastSequence"`
}

// FrameSource exposes a streaming interface for frame producers. Both
// channels are closed when the source is exhausted or ctx ends.
type FrameSource interface {
	Stream(ctx context.Context) (<-chan media.TimedFrame, <-chan error)
	Metrics() StreamMetrics
}
