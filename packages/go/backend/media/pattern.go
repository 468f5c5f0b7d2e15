package media

// PatternConfig describes a synthetic frame: a uniform background with one
// rectangular block of a contrasting color.
type PatternConfig struct {
	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int
	// Background is the RGB fill of the frame.
	Background [3]float64
	// Block is the RGB fill of the contrasting block.
	Block [3]float64
	// BlockX, BlockY, BlockWidth and BlockHeight place the block. A zero-sized
	// block yields a uniform frame.
	BlockX      int
	BlockY      int
	BlockWidth  int
	BlockHeight int
}

// DefaultPatternConfig returns a 320x240 grey frame with a white 40x20 block,
// large enough for the default scanner grid to report regions.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		Width:       320,
		Height:      240,
		Background:  [3]float64{0.2, 0.2, 0.2},
		Block:       [3]float64{1, 1, 1},
		BlockX:      140,
		BlockY:      110,
		BlockWidth:  40,
		BlockHeight: 20,
	}
}

// RenderPattern draws cfg into a new buffer.
func RenderPattern(cfg PatternConfig) (*RGBBuffer, error) {
	buf, err := NewRGBBuffer(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	bg := cfg.Background
	buf.Fill(0, 0, cfg.Width, cfg.Height, bg[0], bg[1], bg[2])
	if cfg.BlockWidth > 0 && cfg.BlockHeight > 0 {
		fg := cfg.Block
		buf.Fill(cfg.BlockX, cfg.BlockY, cfg.BlockX+cfg.BlockWidth, cfg.BlockY+cfg.BlockHeight, fg[0], fg[1], fg[2])
	}
	return buf, nil
}
