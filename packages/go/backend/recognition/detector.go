// Package recognition defines the plug-in point for text detectors: anything
// that turns a frame into (text, normalized rect) pairs.
package recognition

import (
	"context"
	"iter"

	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/media"
)

// Region is a candidate text region reported by a detector.
type Region struct {
	// Text is the recognized text. Heuristic detectors report a placeholder.
	Text string `json:"text"`
	// Rect is the region bounds normalized to [0,1]×[0,1] of the frame.
	Rect geometry.Rect `json:"rect"`
}

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Detector locates text regions in a frame.
type Detector interface {
	// Name identifies the detector in logs and health output.
	Name() string

	// Detect validates the frame and returns its regions. The sequence may be
	// lazy; callers must consume it before handing the frame back to its source.
	Detect(ctx context.Context, frame media.Frame) (iter.Seq[Region], error)

	// Health returns the current health status of the detector.
	Health() HealthStatus
}
