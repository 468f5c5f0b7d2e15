package di

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/config"
	"lenslation/packages/go/backend/coordinator"
	"lenslation/packages/go/backend/overlay"
	"lenslation/packages/go/backend/pipeline"
	"lenslation/packages/go/backend/recognition"
	"lenslation/packages/go/backend/scanner"
	"lenslation/packages/go/backend/status"
	"lenslation/packages/go/backend/translation"
)

// Container holds the wired core of the overlay pipeline.
// It enables dependency injection for both production and test environments.
type Container struct {
	Config      config.Config
	Logger      *zap.SugaredLogger
	Detector    recognition.Detector
	Translator  translation.Translator
	Sink        overlay.Sink
	Diagnostics status.Publisher

	Coordinator *coordinator.Coordinator
	Overlays    *overlay.Manager
	Engine      *pipeline.Engine
}

// ContainerOption configures a container during construction.
type ContainerOption func(*Container)

// WithLogger sets the logger passed to every component.
func WithLogger(l *zap.SugaredLogger) ContainerOption {
	return func(c *Container) { c.Logger = l }
}

// WithDetector replaces the contrast scanner.
func WithDetector(d recognition.Detector) ContainerOption {
	return func(c *Container) { c.Detector = d }
}

// WithTranslator sets the translation collaborator.
func WithTranslator(t translation.Translator) ContainerOption {
	return func(c *Container) { c.Translator = t }
}

// WithSink sets the rendering sink.
func WithSink(s overlay.Sink) ContainerOption {
	return func(c *Container) { c.Sink = s }
}

// WithDiagnostics sets the publisher for failed and timed-out translations.
func WithDiagnostics(p status.Publisher) ContainerOption {
	return func(c *Container) { c.Diagnostics = p }
}

// NewContainer builds the coordinator, overlay manager and engine from cfg.
// Collaborators not supplied through options fall back to the contrast
// scanner, the dictionary translator, a no-op sink and log diagnostics.
func NewContainer(cfg config.Config, opts ...ContainerOption) (*Container, error) {
	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}

	if c.Detector == nil {
		s, err := scanner.New(cfg.ScannerConfig())
		if err != nil {
			return nil, fmt.Errorf("di: scanner: %w", err)
		}
		c.Detector = scanner.NewDetector(s, cfg.Scanner.PlaceholderText)
	}
	if c.Translator == nil {
		c.Translator = translation.NewStubTranslator(nil)
	}
	if c.Sink == nil {
		c.Sink = overlay.NopSink{}
	}
	if c.Diagnostics == nil {
		c.Diagnostics = status.NewLogPublisher(c.Logger)
	}

	coord, err := coordinator.New(c.Translator, cfg.Pair(), cfg.CoordinatorConfig(), c.Logger.Named("coordinator"))
	if err != nil {
		return nil, fmt.Errorf("di: coordinator: %w", err)
	}
	overlays, err := overlay.NewManager(cfg.OverlayConfig(), c.Sink, c.Logger.Named("overlay"))
	if err != nil {
		coord.Close()
		return nil, fmt.Errorf("di: overlay manager: %w", err)
	}
	engine, err := pipeline.New(c.Detector, coord, overlays, c.Diagnostics, cfg.EngineConfig(), c.Logger.Named("engine"))
	if err != nil {
		coord.Close()
		return nil, fmt.Errorf("di: engine: %w", err)
	}

	c.Coordinator = coord
	c.Overlays = overlays
	c.Engine = engine
	return c, nil
}

// NewTestContainer creates a container from the default configuration with
// stub collaborators for testing without external dependencies.
func NewTestContainer(opts ...ContainerOption) (*Container, error) {
	defaults := []ContainerOption{
		WithDetector(recognition.NewStubDetector(nil)),
		WithTranslator(translation.NewStubTranslator(&translation.StubTranslatorConfig{
			Dictionary: translation.DefaultStubTranslatorConfig().Dictionary,
		})),
	}
	return NewContainer(config.Default(), append(defaults, opts...)...)
}

// Close releases the coordinator. Sinks and publishers belong to the caller.
func (c *Container) Close() error {
	if c.Coordinator == nil {
		return errors.New("di: container not built")
	}
	c.Coordinator.Close()
	return nil
}
