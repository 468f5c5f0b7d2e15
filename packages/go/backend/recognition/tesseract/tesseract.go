// Package tesseract provides a Detector backed by the Tesseract OCR engine
// through gosseract. It needs the tesseract and leptonica shared libraries at
// build and run time.
package tesseract

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"lenslation/packages/go/backend/geometry"
	"lenslation/packages/go/backend/media"
	"lenslation/packages/go/backend/recognition"
)

// Config tunes the Tesseract client for each frame.
type Config struct {
	// Languages are Tesseract trained-data names such as "eng" or "spa".
	Languages []string
	// Level selects the page iterator level used to group text into regions.
	Level gosseract.PageIteratorLevel
	// MinConfidence drops boxes below this confidence (0-100).
	MinConfidence float64
}

// DefaultConfig returns line-level detection in English.
func DefaultConfig() Config {
	return Config{
		Languages:     []string{"eng"},
		Level:         gosseract.RIL_TEXTLINE,
		MinConfidence: 40,
	}
}

// Detector implements recognition.Detector with a fresh gosseract client per
// frame.
type Detector struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

var _ recognition.Detector = (*Detector)(nil)

// New constructs a Tesseract-backed detector.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (d *Detector) Name() string { return "tesseract" }

// Detect runs OCR over the whole frame and reports one region per box.
func (d *Detector) Detect(ctx context.Context, frame media.Frame) (iter.Seq[recognition.Region], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil || frame.Width() <= 0 || frame.Height() <= 0 {
		return nil, fmt.Errorf("%w: tesseract input", media.ErrInvalidDimensions)
	}
	data, err := media.EncodePNG(frame)
	if err != nil {
		return nil, err
	}

	c := d.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(d.cfg.Languages) > 0 {
		if err := c.SetLanguage(d.cfg.Languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	boxes, err := c.GetBoundingBoxes(d.cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}

	w, h := float64(frame.Width()), float64(frame.Height())
	regions := make([]recognition.Region, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" || b.Confidence < d.cfg.MinConfidence {
			continue
		}
		regions = append(regions, recognition.Region{
			Text: text,
			Rect: geometry.Rect{
				X:      float64(b.Box.Min.X) / w,
				Y:      float64(b.Box.Min.Y) / h,
				Width:  float64(b.Box.Dx()) / w,
				Height: float64(b.Box.Dy()) / h,
			},
		})
	}
	return slices.Values(regions), nil
}

// Health reports the linked Tesseract version.
func (d *Detector) Health() recognition.HealthStatus {
	return recognition.HealthStatus{
		Healthy: true,
		Message: "tesseract " + gosseract.Version(),
	}
}
