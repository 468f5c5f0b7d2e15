// Package config loads worker settings from TOML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"lenslation/packages/go/backend/coordinator"
	"lenslation/packages/go/backend/overlay"
	"lenslation/packages/go/backend/pipeline"
	"lenslation/packages/go/backend/scanner"
	"lenslation/packages/go/backend/translation"
)

// Duration decodes TOML strings such as "5s" or "100ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ScannerConfig struct {
	Threshold       float64 `toml:"threshold"`
	CellWidth       int     `toml:"cell_width"`
	CellHeight      int     `toml:"cell_height"`
	PlaceholderText string  `toml:"placeholder_text"`
}

type DetectorConfig struct {
	// Type is "contrast" or "tesseract".
	Type      string   `toml:"type"`
	Languages []string `toml:"languages"`
}

type LambdaConfig struct {
	FunctionName string `toml:"function_name"`
	Region       string `toml:"region"`
}

type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type TranslationConfig struct {
	Source         translation.Language `toml:"source"`
	Target         translation.Language `toml:"target"`
	RequestTimeout Duration             `toml:"request_timeout"`
	// Provider is "stub", "lambda" or "gemini".
	Provider string       `toml:"provider"`
	Lambda   LambdaConfig `toml:"lambda"`
	Gemini   GeminiConfig `toml:"gemini"`
}

type OverlayConfig struct {
	Duration        Duration `toml:"duration"`
	FadeWindow      Duration `toml:"fade_window"`
	PositionQuantum float64  `toml:"position_quantum"`
}

type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type SourceConfig struct {
	// Type is "synthetic", "directory" or "snapshot".
	Type          string   `toml:"type"`
	Path          string   `toml:"path"`
	URL           string   `toml:"url"`
	FrameInterval Duration `toml:"frame_interval"`
	MaxWidth      int      `toml:"max_width"`
	Loop          bool     `toml:"loop"`
	BufferSize    int      `toml:"buffer_size"`
	Frames        int64    `toml:"frames"`
	Jitter        int      `toml:"jitter"`
}

type EngineConfig struct {
	TickInterval  Duration `toml:"tick_interval"`
	CommandBuffer int      `toml:"command_buffer"`
}

type SinkConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	Channel       string `toml:"channel"`
	StatusChannel string `toml:"status_channel"`
	QueueSize     int    `toml:"queue_size"`
}

type HTTPConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Config is the full worker configuration.
type Config struct {
	Scanner     ScannerConfig     `toml:"scanner"`
	Detector    DetectorConfig    `toml:"detector"`
	Translation TranslationConfig `toml:"translation"`
	Overlay     OverlayConfig     `toml:"overlay"`
	Viewport    ViewportConfig    `toml:"viewport"`
	Source      SourceConfig      `toml:"source"`
	Engine      EngineConfig      `toml:"engine"`
	Sink        SinkConfig        `toml:"sink"`
	HTTP        HTTPConfig        `toml:"http"`
	Log         LogConfig         `toml:"log"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Scanner: ScannerConfig{
			Threshold:       0.5,
			CellWidth:       20,
			CellHeight:      10,
			PlaceholderText: "Detected Text",
		},
		Detector: DetectorConfig{
			Type:      "contrast",
			Languages: []string{"eng"},
		},
		Translation: TranslationConfig{
			Source:         translation.Spanish,
			Target:         translation.English,
			RequestTimeout: Duration{5 * time.Second},
			Provider:       "stub",
			Gemini:         GeminiConfig{Model: translation.DefaultGeminiModel},
		},
		Overlay: OverlayConfig{
			Duration:        Duration{5 * time.Second},
			FadeWindow:      Duration{time.Second},
			PositionQuantum: 50,
		},
		Viewport: ViewportConfig{Width: 1920, Height: 1080},
		Source: SourceConfig{
			Type:          "synthetic",
			FrameInterval: Duration{100 * time.Millisecond},
			BufferSize:    4,
			Jitter:        8,
		},
		Engine: EngineConfig{
			TickInterval:  Duration{33 * time.Millisecond},
			CommandBuffer: 16,
		},
		Sink: SinkConfig{
			Channel:       "lenslation:overlays",
			StatusChannel: "lenslation:status",
			QueueSize:     256,
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info"},
	}
}

// Load decodes the TOML file at path over Default, applies environment
// overrides read through getenv and validates the result. An empty path
// skips the file.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	applyEnv(&cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnvironment loads the file named by LENS_CONFIG, if any.
func FromEnvironment() (Config, error) {
	return Load(os.Getenv("LENS_CONFIG"), os.Getenv)
}

func applyEnv(cfg *Config, getenv func(string) string) {
	env := func(key, fallback string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return fallback
	}

	cfg.Log.Level = env("LENS_LOG_LEVEL", cfg.Log.Level)
	cfg.HTTP.Addr = env("LENS_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Sink.RedisAddr = env("LENS_REDIS_ADDR", cfg.Sink.RedisAddr)
	cfg.Translation.Provider = env("LENS_TRANSLATION_PROVIDER", cfg.Translation.Provider)
	cfg.Translation.Gemini.APIKey = env("GEMINI_API_KEY", cfg.Translation.Gemini.APIKey)
	cfg.Translation.Lambda.FunctionName = env("LENS_LAMBDA_FUNCTION", cfg.Translation.Lambda.FunctionName)
	if path := getenv("LENS_SOURCE_PATH"); path != "" {
		cfg.Source.Path = path
		if cfg.Source.Type == "synthetic" {
			cfg.Source.Type = "directory"
		}
	}
}

var (
	detectorTypes = []string{"contrast", "tesseract"}
	providers     = []string{"stub", "lambda", "gemini"}
	sourceTypes   = []string{"synthetic", "directory", "snapshot"}
)

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Scanner.CellWidth > 0 && c.Scanner.CellHeight > 0, "scanner: cell size must be positive, got %dx%d", c.Scanner.CellWidth, c.Scanner.CellHeight)
	check(c.Scanner.Threshold >= 0 && c.Scanner.Threshold <= 1, "scanner: threshold must be in [0,1], got %v", c.Scanner.Threshold)

	check(slices.Contains(detectorTypes, c.Detector.Type), "detector: unknown type %q", c.Detector.Type)

	check(c.Translation.RequestTimeout.Duration > 0, "translation: request_timeout must be positive")
	check(slices.Contains(providers, c.Translation.Provider), "translation: unknown provider %q", c.Translation.Provider)
	if c.Translation.Provider == "lambda" {
		check(c.Translation.Lambda.FunctionName != "", "translation.lambda: function_name is required")
	}
	if c.Translation.Provider == "gemini" {
		check(c.Translation.Gemini.APIKey != "", "translation.gemini: api_key or GEMINI_API_KEY is required")
	}

	check(c.Overlay.Duration.Duration >= 0, "overlay: duration cannot be negative")
	check(c.Overlay.FadeWindow.Duration > 0, "overlay: fade_window must be positive")
	check(c.Overlay.PositionQuantum > 0, "overlay: position_quantum must be positive")

	check(c.Viewport.Width > 0 && c.Viewport.Height > 0, "viewport: dimensions must be positive")

	check(slices.Contains(sourceTypes, c.Source.Type), "source: unknown type %q", c.Source.Type)
	if c.Source.Type == "directory" {
		check(c.Source.Path != "", "source: path is required for directory sources")
	}
	if c.Source.Type == "snapshot" {
		check(c.Source.URL != "", "source: url is required for snapshot sources")
	}
	check(c.Source.FrameInterval.Duration >= 0, "source: frame_interval cannot be negative")
	check(c.Source.MaxWidth >= 0, "source: max_width cannot be negative")

	check(c.Engine.TickInterval.Duration > 0, "engine: tick_interval must be positive")

	return errors.Join(errs...)
}

// Pair returns the configured language pair.
func (c Config) Pair() translation.LanguagePair {
	return translation.LanguagePair{Source: c.Translation.Source, Target: c.Translation.Target}
}

func (c Config) ScannerConfig() scanner.Config {
	return scanner.Config{
		CellWidth:  c.Scanner.CellWidth,
		CellHeight: c.Scanner.CellHeight,
		Threshold:  c.Scanner.Threshold,
	}
}

func (c Config) CoordinatorConfig() coordinator.Config {
	cfg := coordinator.DefaultConfig()
	cfg.RequestTimeout = c.Translation.RequestTimeout.Duration
	return cfg
}

func (c Config) OverlayConfig() overlay.Config {
	return overlay.Config{
		FadeWindow:      c.Overlay.FadeWindow.Duration,
		PositionQuantum: c.Overlay.PositionQuantum,
	}
}

func (c Config) EngineConfig() pipeline.Config {
	return pipeline.Config{
		OverlayDuration: c.Overlay.Duration.Duration,
		ViewportWidth:   c.Viewport.Width,
		ViewportHeight:  c.Viewport.Height,
		TickInterval:    c.Engine.TickInterval.Duration,
		CommandBuffer:   c.Engine.CommandBuffer,
	}
}
