package render

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/overlay"
	"lenslation/packages/go/backend/redis"
)

var _ overlay.Sink = (*Recorder)(nil)
var _ overlay.Sink = (*LogSink)(nil)
var _ overlay.Sink = (*RedisSink)(nil)
var _ overlay.Sink = Multi(nil)

func TestRecorderCapturesLifecycle(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	m, err := overlay.NewManager(overlay.DefaultConfig(), rec, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	key, _ := m.Display("Hola", "Hello", geometry.Rect{X: 120, Y: 60, Width: 40, Height: 20}, 2*time.Second)
	m.Tick(1500 * time.Millisecond)
	m.Tick(time.Second)
	m.ClearAll()

	events := rec.Events()
	want := []EventType{EventCreated, EventAlpha, EventExpired, EventCleared}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), events)
	}
	for i, e := range events {
		if e.Type != want[i] {
			t.Fatalf("event %d = %s, want %s", i, e.Type, want[i])
		}
	}
	if *events[0].Key != key || events[0].Text != "Hello" || events[0].Rect.X != 120 {
		t.Fatalf("unexpected created event %+v", events[0])
	}
	if events[1].Alpha != 0.5 {
		t.Fatalf("expected alpha 0.5, got %v", events[1].Alpha)
	}
	if events[3].Key != nil {
		t.Fatal("cleared event carries no key")
	}
	if rec.Count(EventAlpha) != 1 {
		t.Fatalf("Count(alpha) = %d", rec.Count(EventAlpha))
	}
}

func TestMultiAndLogSink(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	a, b := NewRecorder(), NewRecorder()
	multi := Multi{a, b, NewLogSink(zap.New(core).Sugar())}

	key := overlay.Key{Text: "Salida", X: 1, Y: 2}
	multi.OverlayCreated(key, "Exit", geometry.Rect{})
	multi.OverlayAlphaChanged(key, 0.25)
	multi.OverlayExpired(key)

	if len(a.Events()) != 3 || len(b.Events()) != 3 {
		t.Fatalf("expected every sink to see 3 events, got %d and %d", len(a.Events()), len(b.Events()))
	}
	if logs.FilterMessage("overlay event").Len() != 3 {
		t.Fatalf("expected 3 log entries, got %d", logs.Len())
	}
}

func TestRedisSinkPublishesEvents(t *testing.T) {
	t.Parallel()

	srv, err := redis.NewFakeServer()
	if err != nil {
		t.Fatalf("failed to start fake redis: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	client, err := redis.NewClient(srv.Addr())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sink := NewRedisSink(client, "", 8, zaptest.NewLogger(t).Sugar())
	key := overlay.Key{Text: "Hola", X: 2, Y: 4}
	sink.OverlayCreated(key, "Hello", geometry.Rect{X: 103, Y: 207, Width: 40, Height: 20})
	sink.OverlayExpired(key)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	published := srv.Published()
	if len(published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(published))
	}
	if published[0].Channel != DefaultChannel {
		t.Fatalf("unexpected channel %q", published[0].Channel)
	}

	var created Event
	if err := json.Unmarshal([]byte(published[0].Payload), &created); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if created.Type != EventCreated || created.Key == nil || *created.Key != key || created.Text != "Hello" {
		t.Fatalf("unexpected created event %+v", created)
	}

	// Events after Close are ignored rather than panicking.
	sink.OverlaysCleared()
}

type blockingPublisher struct {
	release chan struct{}
}

func (b *blockingPublisher) Publish(ctx context.Context, _, _ string) (int64, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return 1, nil
}

func TestRedisSinkDropsWhenFull(t *testing.T) {
	t.Parallel()

	pub := &blockingPublisher{release: make(chan struct{})}
	sink := NewRedisSink(pub, "overlays", 1, nil)

	key := overlay.Key{Text: "A"}
	for range 10 {
		sink.OverlayAlphaChanged(key, 0.5)
	}
	if sink.Dropped() < 8 {
		t.Fatalf("expected at least 8 drops with a queue of 1, got %d", sink.Dropped())
	}

	close(pub.release)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
