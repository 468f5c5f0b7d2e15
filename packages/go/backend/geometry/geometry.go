// Package geometry holds the rectangle type shared by detectors, the overlay
// manager and rendering sinks.
package geometry

import "math"

// Rect is an axis-aligned rectangle with its origin in the upper-left corner.
// Detectors report rects in normalized [0,1] coordinates; the overlay manager
// works in screen units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsEmpty reports whether the rect has non-positive dimensions.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Scale multiplies the horizontal components by sx and the vertical ones by sy.
// It converts a normalized rect into screen units for a viewport of sx by sy.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{X: r.X * sx, Y: r.Y * sy, Width: r.Width * sx, Height: r.Height * sy}
}

// Quantize buckets the rect origin into cells of the given size using floor
// division.
func (r Rect) Quantize(quantum float64) (int, int) {
	return int(math.Floor(r.X / quantum)), int(math.Floor(r.Y / quantum))
}
