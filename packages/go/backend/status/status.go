// Package status carries diagnostic events: translation failures, timeouts
// and source errors that never become overlays but should still be visible.
package status

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Stages and states used by the pipeline.
const (
	StageDetection   = "detection"
	StageTranslation = "translation"
	StageSource      = "source"

	StateFailed   = "failed"
	StateTimedOut = "timed_out"
	StateError    = "error"
)

// Event is a single diagnostic.
type Event struct {
	Stage     string    `json:"stage"`
	State     string    `json:"state"`
	Detail    string    `json:"detail,omitempty"`
	Text      string    `json:"text,omitempty"`
	Pair      string    `json:"pair,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers diagnostics somewhere observable.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes diagnostics to the structured log at warn level.
type LogPublisher struct {
	logger *zap.SugaredLogger
}

func NewLogPublisher(logger *zap.SugaredLogger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Warnw("diagnostic",
		"stage", event.Stage,
		"state", event.State,
		"detail", event.Detail,
		"text", event.Text,
		"pair", event.Pair,
	)
	return nil
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
