package recognition

import (
	"context"
	"errors"
	"iter"
	"slices"

	"lenslation/packages/go/backend/media"
)

// StubDetectorConfig configures the stub detector behavior.
type StubDetectorConfig struct {
	// Frames maps frame call indices to the regions reported for that call.
	// Calls without an entry report Default.
	Frames map[int][]Region
	// Default is reported for calls missing from Frames.
	Default []Region
	// ErrorAfter causes an error after N calls (0 = no error).
	ErrorAfter int
}

// StubDetector is a test implementation that reports scripted regions.
type StubDetector struct {
	config *StubDetectorConfig
	calls  int
}

// NewStubDetector creates a stub detector. A nil config reports nothing.
func NewStubDetector(config *StubDetectorConfig) *StubDetector {
	if config == nil {
		config = &StubDetectorConfig{}
	}
	return &StubDetector{config: config}
}

func (s *StubDetector) Name() string { return "stub" }

// Detect returns the regions scripted for the current call.
func (s *StubDetector) Detect(ctx context.Context, frame media.Frame) (iter.Seq[Region], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, errors.New("stub detector: nil frame")
	}

	call := s.calls
	s.calls++
	if s.config.ErrorAfter > 0 && call >= s.config.ErrorAfter {
		return nil, errors.New("stub detector: scripted failure")
	}

	regions, ok := s.config.Frames[call]
	if !ok {
		regions = s.config.Default
	}
	return slices.Values(slices.Clone(regions)), nil
}

// Calls reports how many frames have been passed to Detect.
func (s *StubDetector) Calls() int { return s.calls }

// Health returns the health status of the stub detector.
func (s *StubDetector) Health() HealthStatus {
	return HealthStatus{
		Healthy: true,
		Message: "stub detector ready",
	}
}
