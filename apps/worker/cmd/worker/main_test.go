package main

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"lenslation/packages/go/backend/config"
	"lenslation/packages/go/backend/ingestion"
	"lenslation/packages/go/backend/redis"
	"lenslation/packages/go/backend/render"
	"lenslation/packages/go/backend/status"
	"lenslation/packages/go/backend/translation"
)

func TestNewSourceByType(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	f, err := os.Create(filepath.Join(dir, "0001.png"))
	if err != nil {
		t.Fatalf("create frame: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	_ = f.Close()

	cfg := config.Default()
	source, err := newSource(cfg)
	if err != nil {
		t.Fatalf("synthetic source: %v", err)
	}
	if _, ok := source.(*ingestion.SyntheticSource); !ok {
		t.Fatalf("expected synthetic source, got %T", source)
	}

	cfg.Source.Type = "directory"
	cfg.Source.Path = dir
	if source, err = newSource(cfg); err != nil {
		t.Fatalf("directory source: %v", err)
	}
	if _, ok := source.(*ingestion.DirectorySource); !ok {
		t.Fatalf("expected directory source, got %T", source)
	}

	cfg.Source.Type = "snapshot"
	cfg.Source.URL = "http://127.0.0.1:9/snapshot.jpg"
	if source, err = newSource(cfg); err != nil {
		t.Fatalf("snapshot source: %v", err)
	}
	if _, ok := source.(*ingestion.SnapshotSource); !ok {
		t.Fatalf("expected snapshot source, got %T", source)
	}

	cfg.Source.Type = "webcam"
	if _, err := newSource(cfg); err == nil {
		t.Fatal("expected error for unknown source type")
	}
}

func TestNewTranslatorAndDetectorDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	tr, err := newTranslator(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newTranslator: %v", err)
	}
	if _, ok := tr.(*translation.StubTranslator); !ok {
		t.Fatalf("expected stub translator, got %T", tr)
	}

	cfg.Translation.Provider = "carrier-pigeon"
	if _, err := newTranslator(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	d, err := newDetector(config.Default())
	if err != nil {
		t.Fatalf("newDetector: %v", err)
	}
	if d.Name() != "contrast" {
		t.Fatalf("expected contrast detector, got %s", d.Name())
	}
}

func TestNewOutputsWithoutRedisLogsOnly(t *testing.T) {
	t.Parallel()

	o, err := newOutputs(config.Default(), zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("newOutputs: %v", err)
	}
	defer o.Close()

	if len(o.Sink.(render.Multi)) != 1 || len(o.Diagnostics.(status.Fanout)) != 1 {
		t.Fatal("expected log-only outputs")
	}
}

func TestRunPublishesOverlaysToRedis(t *testing.T) {
	t.Parallel()

	srv, err := redis.NewFakeServer()
	if err != nil {
		t.Fatalf("fake server: %v", err)
	}
	defer srv.Close()

	cfg := config.Default()
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Sink.RedisAddr = srv.Addr()
	cfg.Source.FrameInterval = config.Duration{Duration: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zaptest.NewLogger(t).Sugar()) }()

	deadline := time.After(3 * time.Second)
	for created := false; !created; {
		select {
		case msg := <-srv.Messages():
			if msg.Channel != cfg.Sink.Channel {
				continue
			}
			var event render.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				t.Fatalf("decode overlay event: %v", err)
			}
			if event.Type == render.EventCreated {
				if event.Text != "Detected Text" {
					t.Fatalf("unexpected overlay text %q", event.Text)
				}
				created = true
			}
		case err := <-done:
			t.Fatalf("run exited early: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for a published overlay")
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}
