// Package render turns overlay lifecycle callbacks into serializable events
// and delivers them to logs, Redis subscribers or in-memory recorders.
package render

import (
	"time"

	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/overlay"
)

// EventType names an overlay lifecycle transition.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventAlpha   EventType = "alpha"
	EventExpired EventType = "expired"
	EventCleared EventType = "cleared"
)

// Event is the wire form of one overlay callback.
type Event struct {
	Type      EventType      `json:"type"`
	Key       *overlay.Key   `json:"key,omitempty"`
	Text      string         `json:"text,omitempty"`
	Rect      *geometry.Rect `json:"rect,omitempty"`
	Alpha     float64        `json:"alpha"`
	Timestamp time.Time      `json:"timestamp"`
}

// emitter adapts overlay.Sink callbacks to a single Event handler.
type emitter struct {
	handle func(Event)
	now    func() time.Time
}

func (e emitter) OverlayCreated(key overlay.Key, text string, rect geometry.Rect) {
	e.handle(Event{Type: EventCreated, Key: &key, Text: text, Rect: &rect, Alpha: 1, Timestamp: e.now()})
}

func (e emitter) OverlayUpdated(key overlay.Key, text string, rect geometry.Rect) {
	e.handle(Event{Type: EventUpdated, Key: &key, Text: text, Rect: &rect, Alpha: 1, Timestamp: e.now()})
}

func (e emitter) OverlayAlphaChanged(key overlay.Key, alpha float64) {
	e.handle(Event{Type: EventAlpha, Key: &key, Alpha: alpha, Timestamp: e.now()})
}

func (e emitter) OverlayExpired(key overlay.Key) {
	e.handle(Event{Type: EventExpired, Key: &key, Timestamp: e.now()})
}

func (e emitter) OverlaysCleared() {
	e.handle(Event{Type: EventCleared, Timestamp: e.now()})
}

func utcNow() time.Time { return time.Now().UTC() }

// Multi fans every callback out to each sink in order.
type Multi []overlay.Sink

func (m Multi) OverlayCreated(key overlay.Key, text string, rect geometry.Rect) {
	for _, s := range m {
		s.OverlayCreated(key, text, rect)
	}
}

func (m Multi) OverlayUpdated(key overlay.Key, text string, rect geometry.Rect) {
	for _, s := range m {
		s.OverlayUpdated(key, text, rect)
	}
}

func (m Multi) OverlayAlphaChanged(key overlay.Key, alpha float64) {
	for _, s := range m {
		s.OverlayAlphaChanged(key, alpha)
	}
}

func (m Multi) OverlayExpired(key overlay.Key) {
	for _, s := range m {
		s.OverlayExpired(key)
	}
}

func (m Multi) OverlaysCleared() {
	for _, s := range m {
		s.OverlaysCleared()
	}
}
