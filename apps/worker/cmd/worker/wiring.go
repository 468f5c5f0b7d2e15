package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/config"
	"lenslation/packages/go/backend/ingestion"
	"lenslation/packages/go/backend/overlay"
	"lenslation/packages/go/backend/recognition"
	"lenslation/packages/go/backend/redis"
	"lenslation/packages/go/backend/render"
	"lenslation/packages/go/backend/scanner"
	"lenslation/packages/go/backend/status"
	"lenslation/packages/go/backend/translation"
)

const diagnosticTimeout = 2 * time.Second

func newTranslator(ctx context.Context, cfg config.Config) (translation.Translator, error) {
	switch cfg.Translation.Provider {
	case "stub":
		return translation.NewStubTranslator(nil), nil
	case "lambda":
		t, err := translation.NewLambdaTranslator(ctx, cfg.Translation.Lambda.FunctionName, cfg.Translation.Lambda.Region)
		if err != nil {
			return nil, fmt.Errorf("lambda translator: %w", err)
		}
		return t, nil
	case "gemini":
		t, err := translation.NewGeminiTranslator(ctx, cfg.Translation.Gemini.APIKey, cfg.Translation.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini translator: %w", err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown translation provider %q", cfg.Translation.Provider)
	}
}

func newContrastDetector(cfg config.Config) (recognition.Detector, error) {
	s, err := scanner.New(cfg.ScannerConfig())
	if err != nil {
		return nil, err
	}
	return scanner.NewDetector(s, cfg.Scanner.PlaceholderText), nil
}

func newSource(cfg config.Config) (ingestion.FrameSource, error) {
	src := cfg.Source
	switch src.Type {
	case "synthetic":
		sc := ingestion.DefaultSyntheticConfig()
		sc.Interval = src.FrameInterval.Duration
		sc.Frames = src.Frames
		sc.Jitter = src.Jitter
		sc.BufferSize = src.BufferSize
		sc.DropWhenFull = true
		return ingestion.NewSyntheticSource(sc)
	case "directory":
		return ingestion.NewDirectorySource(ingestion.DirectoryConfig{
			Path:       src.Path,
			Interval:   src.FrameInterval.Duration,
			MaxWidth:   src.MaxWidth,
			Loop:       src.Loop,
			BufferSize: src.BufferSize,
		})
	case "snapshot":
		return ingestion.NewSnapshotSource(ingestion.SnapshotConfig{
			URL:          src.URL,
			PollInterval: src.FrameInterval.Duration,
			MaxWidth:     src.MaxWidth,
			BufferSize:   src.BufferSize,
		})
	default:
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
}

// outputs bundles the rendering sink and diagnostics publisher along with
// whatever must be closed on shutdown.
type outputs struct {
	Sink        overlay.Sink
	Diagnostics status.Publisher

	closers []io.Closer
	logger  *zap.SugaredLogger
}

func newOutputs(cfg config.Config, logger *zap.SugaredLogger) (*outputs, error) {
	o := &outputs{logger: logger}
	sinks := render.Multi{render.NewLogSink(logger.Named("render"))}
	diagnostics := status.Fanout{status.NewLogPublisher(logger.Named("status"))}

	if cfg.Sink.RedisAddr != "" {
		client, err := redis.NewClient(cfg.Sink.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("redis client: %w", err)
		}
		redisSink := render.NewRedisSink(client, cfg.Sink.Channel, cfg.Sink.QueueSize, logger.Named("render"))
		statusPublisher := status.NewAsync(
			status.NewRedisPublisher(client, cfg.Sink.StatusChannel),
			cfg.Sink.QueueSize,
			diagnosticTimeout,
			logger.Named("status"),
		)
		sinks = append(sinks, redisSink)
		diagnostics = append(diagnostics, statusPublisher)
		// Queues drain before the shared connection closes.
		o.closers = append(o.closers, redisSink, statusPublisher, client)
		logger.Infow("publishing overlays to redis", "addr", client.Addr(), "channel", cfg.Sink.Channel, "statusChannel", cfg.Sink.StatusChannel)
	}

	o.Sink = sinks
	o.Diagnostics = diagnostics
	return o, nil
}

func (o *outputs) Close() {
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			o.logger.Errorw("failed to close output", "error", err)
		}
	}
}

func closeIfCloser(v any, logger *zap.SugaredLogger) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("failed to close translator", "error", err)
	}
}
