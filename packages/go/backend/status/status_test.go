package status

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lenslation/packages/go/backend/redis"
)

func TestRedisPublisherPublishesJSON(t *testing.T) {
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

	publisher := NewRedisPublisher(client, "")
	event := Event{
		Stage:     StageTranslation,
		State:     StateTimedOut,
		Text:      "Hola",
		Pair:      "es->en",
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-srv.Messages():
		if msg.Channel != DefaultChannel {
			t.Fatalf("unexpected channel %q", msg.Channel)
		}
		var got Event
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if got.Stage != event.Stage || got.State != event.State || got.Text != event.Text {
			t.Fatalf("unexpected event payload: %#v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published status event")
	}
}

func TestRedisPublisherRequiresStageAndState(t *testing.T) {
	t.Parallel()

	publisher := NewRedisPublisher(nil, "diag")
	if err := publisher.Publish(context.Background(), Event{}); err == nil {
		t.Fatal("expected error when publishing without stage and state")
	}
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestFanoutJoinsErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	boom := errors.New("boom")
	fanout := Fanout{NewLogPublisher(zap.New(core).Sugar()), failingPublisher{err: boom}}

	err := fanout.Publish(context.Background(), Event{Stage: StageTranslation, State: StateFailed, Text: "Hola"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	entries := logs.FilterMessage("diagnostic").All()
	if len(entries) != 1 || entries[0].ContextMap()["state"] != StateFailed {
		t.Fatalf("expected one diagnostic log, got %+v", entries)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingPublisher) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func TestAsyncFlushesOnClose(t *testing.T) {
	t.Parallel()

	rec := &recordingPublisher{}
	async := NewAsync(rec, 8, time.Second, nil)
	for i := 0; i < 3; i++ {
		if err := async.Publish(context.Background(), Event{Stage: StageSource, State: StateError}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}
	if err := async.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 3 {
		t.Fatalf("expected 3 flushed events, got %d", len(rec.events))
	}
	if err := async.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("Publish after Close should be a no-op, got %v", err)
	}
}
