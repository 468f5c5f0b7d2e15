package render

import (
	"sync"

	"go.uber.org/zap"
)

// Recorder keeps every event in memory.
type Recorder struct {
	emitter

	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	r := &Recorder{}
	r.emitter = emitter{handle: r.record, now: utcNow}
	return r
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of type t were recorded.
func (r *Recorder) Count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// LogSink logs each event at debug level.
type LogSink struct {
	emitter
	logger *zap.SugaredLogger
}

func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &LogSink{logger: logger}
	s.emitter = emitter{handle: s.log, now: utcNow}
	return s
}

func (s *LogSink) log(e Event) {
	fields := []any{"type", string(e.Type)}
	if e.Key != nil {
		fields = append(fields, "key", e.Key.String())
	}
	if e.Text != "" {
		fields = append(fields, "text", e.Text)
	}
	if e.Type == EventAlpha {
		fields = append(fields, "alpha", e.Alpha)
	}
	s.logger.Debugw("overlay event", fields...)
}
