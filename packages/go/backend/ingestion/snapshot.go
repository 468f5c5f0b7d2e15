package ingestion

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"time"

	"lenslation/packages/go/backend/media"
)

// SnapshotConfig tunes the HTTP snapshot poller.
type SnapshotConfig struct {
	// URL returns a single still image per GET, as IP cameras expose at
	// paths like /snapshot.jpg.
	URL             string
	Client          *http.Client
	PollInterval    time.Duration
	MaxWidth        int
	BufferSize      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	// MaxBytes caps the accepted image size. Defaults to 16 MiB when zero.
	MaxBytes int64
}

// SnapshotSource polls a camera snapshot endpoint. It always drops frames
// the consumer is not ready for, since a stale snapshot is worthless.
type SnapshotSource struct {
	cfg      SnapshotConfig
	counters *streamCounters
}

func NewSnapshotSource(cfg SnapshotConfig) (*SnapshotSource, error) {
	if cfg.URL == "" {
		return nil, errors.New("snapshot URL is required")
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 2
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.MaxRetryBackoff <= 0 {
		cfg.MaxRetryBackoff = 5 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 << 20
	}
	return &SnapshotSource{cfg: cfg, counters: &streamCounters{}}, nil
}

func (s *SnapshotSource) Stream(ctx context.Context) (<-chan media.TimedFrame, <-chan error) {
	frames := make(chan media.TimedFrame, s.cfg.BufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(frames)
		defer close(errs)

		backoff := s.cfg.RetryBackoff
		var sequence int64
		for {
			if ctx.Err() != nil {
				return
			}

			frame, err := s.fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.counters.report(errs, err)
				if !wait(ctx, backoff) {
					return
				}
				if next := backoff * 2; next <= s.cfg.MaxRetryBackoff {
					backoff = next
				}
				s.counters.reconnect.Add(1)
				continue
			}
			backoff = s.cfg.RetryBackoff

			sequence++
			timed := media.TimedFrame{Sequence: sequence, Timestamp: time.Now().UTC(), Frame: frame}
			if !s.counters.emit(ctx, frames, timed, true) {
				return
			}
			if !wait(ctx, s.cfg.PollInterval) {
				return
			}
		}
	}()

	return frames, errs
}

func (s *SnapshotSource) Metrics() StreamMetrics {
	return s.counters.snapshot()
}

func (s *SnapshotSource) fetch(ctx context.Context) (media.Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}
	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot returned %s", resp.Status)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, s.cfg.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return media.FromImage(media.Resize(img, s.cfg.MaxWidth))
}

var _ FrameSource = (*SnapshotSource)(nil)
