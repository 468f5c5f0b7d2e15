// Package overlay owns the set of displayed overlays and drives each one
// through Active, Fading and Expired on a periodic tick.
package overlay

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/observability"
)

var (
	ErrNegativeDuration = errors.New("overlay: negative duration")
	ErrNegativeDelta    = errors.New("overlay: negative time delta")
	ErrInvalidConfig    = errors.New("overlay: invalid config")
)

// Key identifies an overlay by text and approximate screen position.
type Key struct {
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (k Key) String() string {
	return fmt.Sprintf("%q@(%d,%d)", k.Text, k.X, k.Y)
}

// Handle is the state of one displayed overlay.
type Handle struct {
	Key        Key           `json:"key"`
	Original   string        `json:"original"`
	Translated string        `json:"translated"`
	Rect       geometry.Rect `json:"rect"`
	Elapsed    time.Duration `json:"elapsed"`
	Duration   time.Duration `json:"duration"`
	Alpha      float64       `json:"alpha"`
}

// Fading reports whether the handle has entered its fade window.
func (h Handle) Fading() bool { return h.Alpha < 1 }

// Config controls keying and fading.
type Config struct {
	// FadeWindow is the final stretch of an overlay's life during which its
	// alpha falls linearly to zero.
	FadeWindow time.Duration
	// PositionQuantum is the cell size, in screen units, used to merge
	// overlays whose position jitters slightly between frames.
	PositionQuantum float64
}

func DefaultConfig() Config {
	return Config{
		FadeWindow:      time.Second,
		PositionQuantum: 50,
	}
}

// Manager owns the live overlays. It is not safe for concurrent use.
type Manager struct {
	config Config
	sink   Sink
	logger *zap.SugaredLogger

	handles []*Handle
	byKey   map[Key]*Handle
}

// NewManager creates a manager that reports to sink.
func NewManager(config Config, sink Sink, logger *zap.SugaredLogger) (*Manager, error) {
	if config.FadeWindow <= 0 {
		return nil, fmt.Errorf("%w: fade window must be positive", ErrInvalidConfig)
	}
	if config.PositionQuantum <= 0 {
		return nil, fmt.Errorf("%w: position quantum must be positive", ErrInvalidConfig)
	}
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{
		config: config,
		sink:   sink,
		logger: logger,
		byKey:  make(map[Key]*Handle),
	}, nil
}

// KeyFor derives the overlay key for text seen at rect.
func (m *Manager) KeyFor(text string, rect geometry.Rect) Key {
	x, y := rect.Quantize(m.config.PositionQuantum)
	return Key{Text: text, X: x, Y: y}
}

// Display shows translated over rect, or refreshes the overlay already shown
// for the same text at roughly the same place.
func (m *Manager) Display(original, translated string, rect geometry.Rect, duration time.Duration) (Key, error) {
	if duration < 0 {
		return Key{}, fmt.Errorf("%w: %v", ErrNegativeDuration, duration)
	}

	key := m.KeyFor(original, rect)
	if h, ok := m.byKey[key]; ok {
		h.Elapsed = 0
		if h.Translated != translated {
			h.Translated = translated
			m.emit("updated")
			m.sink.OverlayUpdated(key, translated, h.Rect)
		}
		if alpha := Alpha(0, h.Duration, m.config.FadeWindow); alpha != h.Alpha {
			h.Alpha = alpha
			m.emit("alpha")
			m.sink.OverlayAlphaChanged(key, alpha)
		}
		m.logger.Debugw("overlay refreshed", "key", key.String())
		return key, nil
	}

	h := &Handle{
		Key:        key,
		Original:   original,
		Translated: translated,
		Rect:       rect,
		Duration:   duration,
		Alpha:      Alpha(0, duration, m.config.FadeWindow),
	}
	m.handles = append(m.handles, h)
	m.byKey[key] = h
	observability.SetLiveOverlays(len(m.handles))
	m.emit("created")
	m.sink.OverlayCreated(key, translated, rect)
	// Sinks assume created overlays are opaque.
	if h.Alpha != 1 {
		m.emit("alpha")
		m.sink.OverlayAlphaChanged(key, h.Alpha)
	}
	m.logger.Debugw("overlay created", "key", key.String(), "text", translated, "duration", duration)
	return key, nil
}

// Tick advances every overlay by delta, updating alpha and expiring overlays
// whose elapsed time reached their duration.
func (m *Manager) Tick(delta time.Duration) error {
	if delta < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDelta, delta)
	}
	if len(m.handles) == 0 {
		return nil
	}

	live := m.handles[:0]
	for _, h := range m.handles {
		h.Elapsed += delta
		if h.Elapsed >= h.Duration {
			delete(m.byKey, h.Key)
			m.emit("expired")
			m.sink.OverlayExpired(h.Key)
			m.logger.Debugw("overlay expired", "key", h.Key.String())
			continue
		}
		if alpha := Alpha(h.Elapsed, h.Duration, m.config.FadeWindow); alpha != h.Alpha {
			h.Alpha = alpha
			m.emit("alpha")
			m.sink.OverlayAlphaChanged(h.Key, alpha)
		}
		live = append(live, h)
	}
	clear(m.handles[len(live):])
	m.handles = live
	observability.SetLiveOverlays(len(m.handles))
	return nil
}

// ClearAll removes every overlay with a single bulk notification.
func (m *Manager) ClearAll() {
	n := len(m.handles)
	clear(m.handles)
	m.handles = m.handles[:0]
	clear(m.byKey)
	observability.SetLiveOverlays(0)
	m.emit("cleared")
	m.sink.OverlaysCleared()
	m.logger.Debugw("overlays cleared", "count", n)
}

// Len returns the number of live overlays.
func (m *Manager) Len() int { return len(m.handles) }

// Get returns a copy of the handle for key.
func (m *Manager) Get(key Key) (Handle, bool) {
	h, ok := m.byKey[key]
	if !ok {
		return Handle{}, false
	}
	return *h, true
}

// Snapshot copies the live handles in creation order.
func (m *Manager) Snapshot() []Handle {
	out := make([]Handle, len(m.handles))
	for i, h := range m.handles {
		out[i] = *h
	}
	return out
}

func (m *Manager) emit(eventType string) {
	observability.RecordOverlayEvent(eventType)
}

// Alpha is the opacity of an overlay elapsed into a lifetime of total with
// the given fade window, clamped to [0,1].
func Alpha(elapsed, total, fade time.Duration) float64 {
	fadeStart := total - fade
	if elapsed <= fadeStart {
		return 1
	}
	alpha := 1 - float64(elapsed-fadeStart)/float64(fade)
	return min(max(alpha, 0), 1)
}
