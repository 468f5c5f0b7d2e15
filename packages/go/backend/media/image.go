package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// ImageFrame adapts an image.Image to the Frame contract.
type ImageFrame struct {
	img    image.Image
	bounds image.Rectangle
}

// FromImage wraps img. The frame origin is the image's Bounds().Min.
func FromImage(img image.Image) (*ImageFrame, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidDimensions)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Dx(), b.Dy())
	}
	return &ImageFrame{img: img, bounds: b}, nil
}

func (f *ImageFrame) Width() int  { return f.bounds.Dx() }
func (f *ImageFrame) Height() int { return f.bounds.Dy() }

// RGB samples the underlying image, dropping alpha.
func (f *ImageFrame) RGB(x, y int) (float64, float64, float64) {
	r, g, b, _ := f.img.At(f.bounds.Min.X+x, f.bounds.Min.Y+y).RGBA()
	return float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff
}

// Image returns the wrapped image.
func (f *ImageFrame) Image() image.Image { return f.img }

// Resize downsamples img so that its width does not exceed maxWidth,
// preserving the aspect ratio. Images already within bounds, or a
// non-positive maxWidth, are returned unchanged.
func Resize(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ToImage renders any frame into an RGBA image. ImageFrames return their
// wrapped image directly.
func ToImage(f Frame) image.Image {
	if imf, ok := f.(*ImageFrame); ok {
		return imf.img
	}
	dst := image.NewRGBA(image.Rect(0, 0, f.Width(), f.Height()))
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			r, g, b := f.RGB(x, y)
			dst.SetRGBA(x, y, color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 0xff})
		}
	}
	return dst
}

// EncodePNG encodes the frame as PNG, the format handed to OCR engines.
func EncodePNG(f Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, ToImage(f)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	default:
		return uint8(v*0xff + 0.5)
	}
}
