package overlay

import "lenslation/packages/go/backend/geometry"

// Sink receives overlay lifecycle events. Calls arrive on the goroutine that
// owns the Manager.
type Sink interface {
	OverlayCreated(key Key, text string, rect geometry.Rect)
	OverlayUpdated(key Key, text string, rect geometry.Rect)
	OverlayAlphaChanged(key Key, alpha float64)
	OverlayExpired(key Key)
	OverlaysCleared()
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) OverlayCreated(Key, string, geometry.Rect) {}
func (NopSink) OverlayUpdated(Key, string, geometry.Rect) {}
func (NopSink) OverlayAlphaChanged(Key, float64)          {}
func (NopSink) OverlayExpired(Key)                        {}
func (NopSink) OverlaysCleared()                          {}
