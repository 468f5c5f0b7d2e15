package media

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDimensions is returned when a buffer is created with a
// non-positive width or height.
var ErrInvalidDimensions = errors.New("media: frame dimensions must be positive")

// Frame is a read-only pixel buffer supplied by a camera or replay source.
type Frame interface {
	// Width returns the frame width in pixels.
	Width() int
	// Height returns the frame height in pixels.
	Height() int
	// RGB samples the pixel at (x, y). Channels are in [0,1].
	RGB(x, y int) (r, g, b float64)
}

// TimedFrame pairs a frame with its position in the source stream.
type TimedFrame struct {
	// Sequence is the zero-based index of the frame within the stream.
	Sequence int64
	// Timestamp marks when the frame was captured or replayed.
	Timestamp time.Time
	// Frame is the pixel data.
	Frame Frame
}

// RGBBuffer is an in-memory frame with float channels, three per pixel,
// stored row-major.
type RGBBuffer struct {
	width  int
	height int
	pix    []float64
}

// NewRGBBuffer allocates a black buffer of the given size.
func NewRGBBuffer(width, height int) (*RGBBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &RGBBuffer{
		width:  width,
		height: height,
		pix:    make([]float64, width*height*3),
	}, nil
}

func (b *RGBBuffer) Width() int  { return b.width }
func (b *RGBBuffer) Height() int { return b.height }

// RGB returns the channels at (x, y).
func (b *RGBBuffer) RGB(x, y int) (float64, float64, float64) {
	i := (y*b.width + x) * 3
	return b.pix[i], b.pix[i+1], b.pix[i+2]
}

// Set writes the channels at (x, y).
func (b *RGBBuffer) Set(x, y int, r, g, bl float64) {
	i := (y*b.width + x) * 3
	b.pix[i], b.pix[i+1], b.pix[i+2] = r, g, bl
}

// Fill paints the rectangle [x0,x1)×[y0,y1) with a single color, clipped to
// the buffer bounds.
func (b *RGBBuffer) Fill(x0, y0, x1, y1 int, r, g, bl float64) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, b.width), min(y1, b.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b.Set(x, y, r, g, bl)
		}
	}
}
