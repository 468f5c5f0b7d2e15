// Package main contains the overlay worker entry point.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lenslation/packages/go/backend/config"
	"lenslation/packages/go/backend/control"
	"lenslation/packages/go/backend/di"
	"lenslation/packages/go/backend/logging"
)

func main() {
	cfg, err := config.FromEnvironment()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if logging.ParseLevel(cfg.Log.Level) != zap.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infow("worker starting",
		"source", cfg.Source.Type,
		"detector", cfg.Detector.Type,
		"provider", cfg.Translation.Provider,
		"pair", cfg.Pair().String(),
		"httpAddr", cfg.HTTP.Addr,
	)

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("worker stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Infow("worker stopped")
}

// run wires the pipeline from cfg and blocks until ctx ends or the engine or
// HTTP server fails.
func run(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	translator, err := newTranslator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeIfCloser(translator, logger)

	detector, err := newDetector(cfg)
	if err != nil {
		return err
	}

	outputs, err := newOutputs(cfg, logger)
	if err != nil {
		return err
	}
	defer outputs.Close()

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	container, err := di.NewContainer(cfg,
		di.WithLogger(logger),
		di.WithDetector(detector),
		di.WithTranslator(translator),
		di.WithSink(outputs.Sink),
		di.WithDiagnostics(outputs.Diagnostics),
	)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	router := control.NewRouter(container.Engine, control.Options{CORSOrigins: cfg.HTTP.CORSOrigins}, logger.Named("http"))
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("control api listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	engineErr := make(chan error, 1)
	go func() { engineErr <- container.Engine.Run(ctx, source) }()

	var runErr error
	select {
	case runErr = <-engineErr:
	case runErr = <-serverErr:
		cancel()
		<-engineErr
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
		if closeErr := server.Close(); closeErr != nil {
			logger.Errorw("forced close failed", "error", closeErr)
		}
	}

	metrics := source.Metrics()
	logger.Infow("frame source summary",
		"received", metrics.ReceivedFrames,
		"dropped", metrics.DroppedFrames,
		"errors", metrics.ErrorCount,
		"reconnects", metrics.ReconnectCount,
	)
	return runErr
}
