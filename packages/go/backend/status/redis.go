package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultChannel is the pub/sub channel diagnostics are published on.
const DefaultChannel = "lenslation:status"

// redisPublisher is satisfied by *redis.Client.
type redisPublisher interface {
	Publish(ctx context.Context, channel, payload string) (int64, error)
}

// RedisPublisher publishes diagnostics as JSON on a Redis channel.
type RedisPublisher struct {
	client  redisPublisher
	channel string
}

func NewRedisPublisher(client redisPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.Stage == "" || event.State == "" {
		return errors.New("status event requires stage and state")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	if _, err := p.client.Publish(ctx, p.channel, string(payload)); err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}
	return nil
}
