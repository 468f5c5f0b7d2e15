package render

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/observability"
	"lenslation/packages/go/backend/queue"
)

const (
	// DefaultChannel is the pub/sub channel overlay events are published on.
	DefaultChannel = "lenslation:overlays"

	defaultQueueSize      = 256
	defaultPublishTimeout = 2 * time.Second
)

// publisher is satisfied by *redis.Client.
type publisher interface {
	Publish(ctx context.Context, channel, payload string) (int64, error)
}

// RedisSink publishes overlay events as JSON from a background goroutine.
// Callbacks never block: when the queue is full the event is dropped and
// counted.
type RedisSink struct {
	emitter

	client  publisher
	channel string
	logger  *zap.SugaredLogger
	queue   *queue.Dropping[Event]
}

// NewRedisSink starts the publishing goroutine. Close must be called to
// flush and stop it.
func NewRedisSink(client publisher, channel string, queueSize int, logger *zap.SugaredLogger) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &RedisSink{
		client:  client,
		channel: channel,
		logger:  logger,
	}
	s.queue = queue.NewDropping(queueSize, s.publish)
	s.emitter = emitter{handle: s.enqueue, now: utcNow}
	return s
}

func (s *RedisSink) enqueue(e Event) {
	if !s.queue.Offer(e) {
		observability.RecordSinkDrop("redis")
	}
}

func (s *RedisSink) publish(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.logger.Errorw("failed to marshal overlay event", "type", string(e.Type), "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultPublishTimeout)
	defer cancel()
	if _, err := s.client.Publish(ctx, s.channel, string(payload)); err != nil {
		s.logger.Warnw("failed to publish overlay event",
			"channel", s.channel,
			"type", string(e.Type),
			"error", err,
		)
	}
}

// Dropped returns the number of events discarded because the queue was full.
func (s *RedisSink) Dropped() int64 {
	return s.queue.Dropped()
}

// Close stops accepting events and waits for queued ones to be published.
func (s *RedisSink) Close() error {
	s.queue.Close()
	return nil
}
