// Package scanner proposes text regions from raw pixel data with a grid-based
// contrast heuristic. It stands in for a real text detector: it decides which
// cells are reported, never what text they contain.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"

	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/media"
	"lenslation/packages/go/backend/recognition"
)

var (
	// ErrInvalidFrame is returned for nil frames or non-positive dimensions.
	ErrInvalidFrame = errors.New("scanner: invalid frame")
	// ErrInvalidConfig is returned by New for unusable cell sizes or thresholds.
	ErrInvalidConfig = errors.New("scanner: invalid config")
)

// Config holds the grid and threshold settings.
type Config struct {
	// CellWidth and CellHeight are the grid cell size in pixels. The stride
	// equals the cell size.
	CellWidth  int
	CellHeight int
	// Threshold is the luminance contrast a cell must strictly exceed.
	Threshold float64
}

// DefaultConfig returns 20x10 cells with a 0.5 contrast cutoff.
func DefaultConfig() Config {
	return Config{CellWidth: 20, CellHeight: 10, Threshold: 0.5}
}

// Scanner is stateless between calls.
type Scanner struct {
	cfg Config
}

// New validates cfg and returns a scanner.
func New(cfg Config) (*Scanner, error) {
	if cfg.CellWidth <= 0 || cfg.CellHeight <= 0 {
		return nil, fmt.Errorf("%w: cell size %dx%d", ErrInvalidConfig, cfg.CellWidth, cfg.CellHeight)
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidConfig, cfg.Threshold)
	}
	return &Scanner{cfg: cfg}, nil
}

// Config returns the scanner settings.
func (s *Scanner) Config() Config { return s.cfg }

// Luminance is the Rec. 601 luma of an RGB triple.
func Luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// Scan walks the frame left-to-right, top-to-bottom in non-overlapping cells,
// skipping the final partial row and column, and yields one region per cell
// whose contrast exceeds the threshold. Every region carries text.
//
// The frame is validated up front; the returned sequence is lazy and reads
// pixels only as it is consumed.
func (s *Scanner) Scan(frame media.Frame, text string) (iter.Seq[recognition.Region], error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidFrame)
	}
	w, h := frame.Width(), frame.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidFrame, w, h)
	}

	cw, ch := s.cfg.CellWidth, s.cfg.CellHeight
	return func(yield func(recognition.Region) bool) {
		for y := 0; y+ch <= h; y += ch {
			for x := 0; x+cw <= w; x += cw {
				if s.cellContrast(frame, x, y) <= s.cfg.Threshold {
					continue
				}
				region := recognition.Region{
					Text: text,
					Rect: geometry.Rect{
						X:      float64(x) / float64(w),
						Y:      float64(y) / float64(h),
						Width:  float64(cw) / float64(w),
						Height: float64(ch) / float64(h),
					},
				}
				if !yield(region) {
					return
				}
			}
		}
	}, nil
}

func (s *Scanner) cellContrast(frame media.Frame, x0, y0 int) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := y0; y < y0+s.cfg.CellHeight; y++ {
		for x := x0; x < x0+s.cfg.CellWidth; x++ {
			l := Luminance(frame.RGB(x, y))
			lo = min(lo, l)
			hi = max(hi, l)
		}
	}
	return hi - lo
}

// Detector adapts a Scanner to the recognition.Detector plug-in point,
// labelling every region with a fixed placeholder.
type Detector struct {
	scanner     *Scanner
	placeholder string
}

var _ recognition.Detector = (*Detector)(nil)

// NewDetector wraps s. placeholder becomes the text of every region.
func NewDetector(s *Scanner, placeholder string) *Detector {
	return &Detector{scanner: s, placeholder: placeholder}
}

func (d *Detector) Name() string { return "contrast" }

// Detect scans the frame.
func (d *Detector) Detect(ctx context.Context, frame media.Frame) (iter.Seq[recognition.Region], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.scanner.Scan(frame, d.placeholder)
}

// Health always reports healthy; the scanner has no external resources.
func (d *Detector) Health() recognition.HealthStatus {
	return recognition.HealthStatus{Healthy: true, Message: "contrast scanner ready"}
}
