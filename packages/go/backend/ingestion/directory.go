package ingestion

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"lenslation/packages/go/backend/media"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// DirectoryConfig configures the directory-backed frame source.
type DirectoryConfig struct {
	// Path is a directory of image files replayed in lexical order.
	Path string
	// Interval throttles frame emission to simulate a camera. Disabled when zero.
	Interval time.Duration
	// MaxWidth downscales wider images, preserving aspect ratio. Disabled when zero.
	MaxWidth int
	// Loop restarts from the first file after the last one.
	Loop bool
	// BufferSize controls the channel buffer size for emitted frames. Defaults to 4 when zero.
	BufferSize int
	// DropWhenFull discards frames the consumer is not ready for.
	DropWhenFull bool
}

// DirectorySource replays still images as a frame stream.
type DirectorySource struct {
	cfg      DirectoryConfig
	counters *streamCounters
}

// NewDirectorySource validates cfg and returns a source over its directory.
func NewDirectorySource(cfg DirectoryConfig) (*DirectorySource, error) {
	if cfg.Path == "" {
		return nil, errors.New("directory path is required")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("frame interval cannot be negative")
	}
	if cfg.MaxWidth < 0 {
		return nil, errors.New("max width cannot be negative")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 4
	}
	cfg.Path = filepath.Clean(filepath.FromSlash(cfg.Path))
	return &DirectorySource{cfg: cfg, counters: &streamCounters{}}, nil
}

func (d *DirectorySource) Stream(ctx context.Context) (<-chan media.TimedFrame, <-chan error) {
	frames := make(chan media.TimedFrame, d.cfg.BufferSize)
	errs := make(chan error, d.cfg.BufferSize)

	go func() {
		defer close(frames)
		defer close(errs)

		files, err := listImages(d.cfg.Path)
		if err != nil {
			d.counters.report(errs, err)
			return
		}
		if len(files) == 0 {
			d.counters.report(errs, fmt.Errorf("no images found in %s", d.cfg.Path))
			return
		}

		var sequence int64
		for {
			decoded := 0
			for _, path := range files {
				if ctx.Err() != nil {
					return
				}

				frame, err := d.load(path)
				if err != nil {
					d.counters.report(errs, err)
					continue
				}
				decoded++

				sequence++
				timed := media.TimedFrame{Sequence: sequence, Timestamp: time.Now().UTC(), Frame: frame}
				if !d.counters.emit(ctx, frames, timed, d.cfg.DropWhenFull) {
					return
				}
				if !wait(ctx, d.cfg.Interval) {
					return
				}
			}
			if !d.cfg.Loop || decoded == 0 {
				return
			}
		}
	}()

	return frames, errs
}

func (d *DirectorySource) Metrics() StreamMetrics {
	return d.counters.snapshot()
}

func (d *DirectorySource) load(path string) (media.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return media.FromImage(media.Resize(img, d.cfg.MaxWidth))
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

var _ FrameSource = (*DirectorySource)(nil)
