package ingestion

import (
	"context"
	"errors"
	"time"

	"lenslation/packages/go/backend/media"
)

// SyntheticConfig configures the generated frame source.
type SyntheticConfig struct {
	// Pattern is the base frame. The block is shifted by up to Jitter pixels
	// per frame.
	Pattern media.PatternConfig
	// Jitter bounds the per-frame block offset in pixels.
	Jitter int
	// Interval throttles frame emission. Disabled when zero.
	Interval time.Duration
	// Frames stops the source after this many frames. Unlimited when zero.
	Frames int64
	// BufferSize controls the channel buffer size. Defaults to 4 when zero.
	BufferSize int
	// DropWhenFull discards frames the consumer is not ready for.
	DropWhenFull bool
}

// DefaultSyntheticConfig returns a pattern whose block edges straddle the
// default 20x10 scanner grid at every jitter offset.
func DefaultSyntheticConfig() SyntheticConfig {
	pattern := media.DefaultPatternConfig()
	pattern.BlockX = 141
	pattern.BlockY = 111
	return SyntheticConfig{
		Pattern:    pattern,
		Jitter:     8,
		Interval:   100 * time.Millisecond,
		BufferSize: 4,
	}
}

// SyntheticSource generates deterministic frames with a high-contrast block
// that wanders a few pixels between frames, like text seen by a handheld
// camera.
type SyntheticSource struct {
	cfg      SyntheticConfig
	counters *streamCounters
}

func NewSyntheticSource(cfg SyntheticConfig) (*SyntheticSource, error) {
	if cfg.Pattern.Width <= 0 || cfg.Pattern.Height <= 0 {
		return nil, media.ErrInvalidDimensions
	}
	if cfg.Jitter < 0 {
		return nil, errors.New("jitter cannot be negative")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("frame interval cannot be negative")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4
	}
	return &SyntheticSource{cfg: cfg, counters: &streamCounters{}}, nil
}

// Offset returns the block displacement used for the frame with sequence.
func (s *SyntheticSource) Offset(sequence int64) (int, int) {
	if s.cfg.Jitter == 0 {
		return 0, 0
	}
	span := int64(s.cfg.Jitter + 1)
	dx := (sequence * 7) % span
	dy := (sequence * 3) % span
	return int(dx), int(dy)
}

func (s *SyntheticSource) Stream(ctx context.Context) (<-chan media.TimedFrame, <-chan error) {
	frames := make(chan media.TimedFrame, s.cfg.BufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(frames)
		defer close(errs)

		for sequence := int64(1); s.cfg.Frames == 0 || sequence <= s.cfg.Frames; sequence++ {
			if ctx.Err() != nil {
				return
			}

			pattern := s.cfg.Pattern
			dx, dy := s.Offset(sequence)
			pattern.BlockX += dx
			pattern.BlockY += dy

			buf, err := media.RenderPattern(pattern)
			if err != nil {
				s.counters.report(errs, err)
				return
			}

			timed := media.TimedFrame{Sequence: sequence, Timestamp: time.Now().UTC(), Frame: buf}
			if !s.counters.emit(ctx, frames, timed, s.cfg.DropWhenFull) {
				return
			}
			if !wait(ctx, s.cfg.Interval) {
				return
			}
		}
	}()

	return frames, errs
}

func (s *SyntheticSource) Metrics() StreamMetrics {
	return s.counters.snapshot()
}

var _ FrameSource = (*SyntheticSource)(nil)
