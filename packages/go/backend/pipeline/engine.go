// Package pipeline composes detection, translation and overlay management.
//
// All core state lives on one goroutine: the Engine's Run loop. Frames,
// periodic ticks, collaborator results and outside commands are all handled
// there, so the coordinator and overlay manager need no locking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/coordinator"
	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/ingestion"
	"lenslation/packages/go/backend/media"
	"lenslation/packages/go/backend/observability"
	"lenslation/packages/go/backend/overlay"
	"lenslation/packages/go/backend/recognition"
	"lenslation/packages/go/backend/status"
	"lenslation/packages/go/backend/translation"
)

var (
	// ErrStopped is returned by commands sent after Run has returned.
	ErrStopped = errors.New("pipeline: engine stopped")
	// ErrRunning is returned when Run is called twice.
	ErrRunning = errors.New("pipeline: engine already running")
)

// Config controls the engine loop.
type Config struct {
	// OverlayDuration is the visible lifetime of each overlay.
	OverlayDuration time.Duration
	// ViewportWidth and ViewportHeight convert normalized detector rects into
	// screen units.
	ViewportWidth  float64
	ViewportHeight float64
	// TickInterval is the period of the overlay and timeout clock.
	TickInterval time.Duration
	// CommandBuffer sizes the queue for outside commands.
	CommandBuffer int
}

func DefaultConfig() Config {
	return Config{
		OverlayDuration: 5 * time.Second,
		ViewportWidth:   1920,
		ViewportHeight:  1080,
		TickInterval:    33 * time.Millisecond,
		CommandBuffer:   16,
	}
}

// Engine runs the recognition-to-overlay pipeline.
type Engine struct {
	detector    recognition.Detector
	coordinator *coordinator.Coordinator
	overlays    *overlay.Manager
	diagnostics status.Publisher
	config      Config
	logger      *zap.SugaredLogger

	commands chan func()
	started  chan struct{}
	stopped  chan struct{}
}

// New wires an engine. The engine takes no ownership: callers close the
// coordinator and sinks after Run returns.
func New(
	detector recognition.Detector,
	coord *coordinator.Coordinator,
	overlays *overlay.Manager,
	diagnostics status.Publisher,
	config Config,
	logger *zap.SugaredLogger,
) (*Engine, error) {
	if detector == nil || coord == nil || overlays == nil {
		return nil, errors.New("pipeline: detector, coordinator and overlay manager are required")
	}
	if config.OverlayDuration < 0 {
		return nil, fmt.Errorf("pipeline: %w", overlay.ErrNegativeDuration)
	}
	if config.ViewportWidth <= 0 || config.ViewportHeight <= 0 {
		return nil, errors.New("pipeline: viewport must be positive")
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	if config.CommandBuffer <= 0 {
		config.CommandBuffer = DefaultConfig().CommandBuffer
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if diagnostics == nil {
		diagnostics = status.NewLogPublisher(logger)
	}

	return &Engine{
		detector:    detector,
		coordinator: coord,
		overlays:    overlays,
		diagnostics: diagnostics,
		config:      config,
		logger:      logger,
		commands:    make(chan func(), config.CommandBuffer),
		started:     make(chan struct{}),
		stopped:     make(chan struct{}),
	}, nil
}

// ProcessFrame detects regions in frame and submits each for translation.
// Results that arrive later are displayed from Tick. It returns the number
// of regions submitted.
func (e *Engine) ProcessFrame(ctx context.Context, frame media.Frame) (int, error) {
	regions, err := e.detector.Detect(ctx, frame)
	if err != nil {
		e.diagnose(ctx, status.Event{
			Stage:  status.StageDetection,
			State:  status.StateError,
			Detail: err.Error(),
		})
		return 0, fmt.Errorf("detect: %w", err)
	}

	submitted := 0
	for region := range regions {
		submitted++
		rect := region.Rect.Scale(e.config.ViewportWidth, e.config.ViewportHeight)
		e.coordinator.Translate(region.Text, func(result coordinator.Result) {
			e.handleResult(ctx, result, rect)
		})
	}
	observability.RecordFrame(submitted)
	return submitted, nil
}

func (e *Engine) handleResult(ctx context.Context, result coordinator.Result, rect geometry.Rect) {
	switch result.Outcome {
	case coordinator.Translated, coordinator.Cached:
		if _, err := e.overlays.Display(result.Text, result.Translated, rect, e.config.OverlayDuration); err != nil {
			e.logger.Errorw("failed to display overlay", "text", result.Text, "error", err)
		}
	case coordinator.Failed, coordinator.TimedOut:
		state := status.StateFailed
		if result.Outcome == coordinator.TimedOut {
			state = status.StateTimedOut
		}
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
		e.diagnose(ctx, status.Event{
			Stage:  status.StageTranslation,
			State:  state,
			Detail: detail,
			Text:   result.Text,
			Pair:   result.Pair.String(),
		})
	}
}

func (e *Engine) diagnose(ctx context.Context, event status.Event) {
	event.Timestamp = time.Now().UTC()
	if err := e.diagnostics.Publish(ctx, event); err != nil {
		e.logger.Warnw("failed to publish diagnostic", "stage", event.Stage, "state", event.State, "error", err)
	}
}

// Tick advances frame time: live overlays fade and expire first, then
// pending translations are resolved or timed out. Overlays created by
// results delivered here start at elapsed zero.
func (e *Engine) Tick(delta time.Duration) error {
	if err := e.overlays.Tick(delta); err != nil {
		return err
	}
	return e.coordinator.Advance(delta)
}

// Run consumes source until ctx ends. When the source is exhausted the loop
// keeps ticking so displayed overlays still expire.
func (e *Engine) Run(ctx context.Context, source ingestion.FrameSource) error {
	select {
	case <-e.started:
		return ErrRunning
	default:
		close(e.started)
	}
	defer close(e.stopped)

	frames, errs := source.Stream(ctx)
	ticker := time.NewTicker(e.config.TickInterval)
	defer ticker.Stop()
	last := time.Now()

	e.logger.Infow("engine started",
		"detector", e.detector.Name(),
		"pair", e.coordinator.Pair().String(),
		"tickInterval", e.config.TickInterval,
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Infow("engine stopped", "reason", ctx.Err())
			return ctx.Err()

		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if err := e.Tick(delta); err != nil {
				e.logger.Errorw("tick failed", "delta", delta, "error", err)
			}

		case <-e.coordinator.Ready():
			if err := e.coordinator.Advance(0); err != nil {
				e.logger.Errorw("failed to deliver translations", "error", err)
			}

		case fn := <-e.commands:
			fn()

		case tf, ok := <-frames:
			if !ok {
				frames = nil
				e.logger.Infow("frame source exhausted", "metrics", source.Metrics())
				continue
			}
			if _, err := e.ProcessFrame(ctx, tf.Frame); err != nil {
				e.logger.Warnw("frame skipped", "sequence", tf.Sequence, "error", err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			e.logger.Warnw("frame source error", "error", err)
			e.diagnose(ctx, status.Event{
				Stage:  status.StageSource,
				State:  status.StateError,
				Detail: err.Error(),
			})
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. Commands sent
// before Run starts are queued. A command whose ctx ends before the loop
// reaches it is skipped, so an error return means fn did not run.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	const (
		queued int32 = iota
		claimed
		abandoned
	)
	var state atomic.Int32
	done := make(chan struct{})
	cmd := func() {
		if !state.CompareAndSwap(queued, claimed) {
			return
		}
		defer close(done)
		fn()
	}

	select {
	case e.commands <- cmd:
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-e.stopped:
		if state.CompareAndSwap(queued, abandoned) {
			return ErrStopped
		}
	case <-ctx.Done():
		if state.CompareAndSwap(queued, abandoned) {
			return ctx.Err()
		}
	}
	// The loop claimed cmd first; fn runs to completion.
	<-done
	return nil
}

// Language returns the active language pair.
func (e *Engine) Language(ctx context.Context) (translation.LanguagePair, error) {
	var pair translation.LanguagePair
	err := e.Do(ctx, func() { pair = e.coordinator.Pair() })
	return pair, err
}

// SetLanguage activates pair, reporting whether it changed.
func (e *Engine) SetLanguage(ctx context.Context, pair translation.LanguagePair) (bool, error) {
	var changed bool
	err := e.Do(ctx, func() { changed = e.coordinator.SetLanguagePair(pair) })
	return changed, err
}

// SwapLanguages reverses the active pair and returns the new one.
func (e *Engine) SwapLanguages(ctx context.Context) (translation.LanguagePair, error) {
	var pair translation.LanguagePair
	err := e.Do(ctx, func() {
		e.coordinator.SwapLanguages()
		pair = e.coordinator.Pair()
	})
	return pair, err
}

// Overlays snapshots the live overlays.
func (e *Engine) Overlays(ctx context.Context) ([]overlay.Handle, error) {
	var handles []overlay.Handle
	err := e.Do(ctx, func() { handles = e.overlays.Snapshot() })
	return handles, err
}

// ClearOverlays removes every live overlay.
func (e *Engine) ClearOverlays(ctx context.Context) error {
	return e.Do(ctx, e.overlays.ClearAll)
}

// Stats is a point-in-time view of engine state.
type Stats struct {
	Pair            translation.LanguagePair `json:"pair"`
	LiveOverlays    int                      `json:"liveOverlays"`
	PendingRequests int                      `json:"pendingRequests"`
	CacheEntries    int                      `json:"cacheEntries"`
	FrameTime       time.Duration            `json:"frameTime"`
}

func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := e.Do(ctx, func() {
		s = Stats{
			Pair:            e.coordinator.Pair(),
			LiveOverlays:    e.overlays.Len(),
			PendingRequests: e.coordinator.Pending(),
			CacheEntries:    e.coordinator.CacheLen(),
			FrameTime:       e.coordinator.Now(),
		}
	})
	return s, err
}

// Detector returns the configured detector.
func (e *Engine) Detector() recognition.Detector { return e.detector }
