package translation

import (
	"context"
	"fmt"
	"time"
)

// StubTranslatorConfig configures the stub translator behavior.
type StubTranslatorConfig struct {
	// ProcessingDelay simulates translation processing time.
	ProcessingDelay time.Duration
	// Dictionary maps source text to translated text.
	// If a text is missing, returns "[LANG] " prefix + original text.
	Dictionary map[string]map[string]string // [targetLang][sourceText]translatedText
	// Failures lists source texts the stub reports as failed.
	Failures map[string]bool
}

// DefaultStubTranslatorConfig returns sensible defaults for testing.
func DefaultStubTranslatorConfig() *StubTranslatorConfig {
	return &StubTranslatorConfig{
		ProcessingDelay: 50 * time.Millisecond,
		Dictionary: map[string]map[string]string{
			"en": {
				"Hola":            "Hello",
				"Salida":          "Exit",
				"Entrada":         "Entrance",
				"Peligro":         "Danger",
				"Bienvenido":      "Welcome",
				"Sortie":          "Exit",
				"Ausgang":         "Exit",
				"Detected Text":   "Detected Text",
				"Cerrado":         "Closed",
				"Abierto":         "Open",
				"No fumar":        "No smoking",
				"Gracias":         "Thank you",
				"Buenos días":     "Good morning",
				"Estación":        "Station",
				"Baños":           "Restrooms",
				"Farmacia":        "Pharmacy",
				"Prohibido pasar": "No entry",
			},
			"es": {
				"Hello":    "Hola",
				"Exit":     "Salida",
				"Entrance": "Entrada",
				"Danger":   "Peligro",
				"Welcome":  "Bienvenido",
			},
			"fr": {
				"Hello":   "Bonjour",
				"Exit":    "Sortie",
				"Danger":  "Danger",
				"Welcome": "Bienvenue",
			},
		},
	}
}

// StubTranslator is a test implementation that returns deterministic translations.
type StubTranslator struct {
	config *StubTranslatorConfig
}

// NewStubTranslator creates a new stub translator with the given config.
func NewStubTranslator(config *StubTranslatorConfig) *StubTranslator {
	if config == nil {
		config = DefaultStubTranslatorConfig()
	}
	return &StubTranslator{config: config}
}

func (s *StubTranslator) Name() string { return "stub" }

// Translate converts a single text segment.
func (s *StubTranslator) Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error) {
	// Simulate processing delay
	if s.config.ProcessingDelay > 0 {
		select {
		case <-time.After(s.config.ProcessingDelay):
		case <-ctx.Done():
			return Translation{}, ctx.Err()
		}
	}

	if s.config.Failures[text] {
		return Translation{}, fmt.Errorf("stub translator: scripted failure for %q", text)
	}

	return Translation{
		SourceText:     text,
		TranslatedText: s.lookupTranslation(text, targetLang),
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
	}, nil
}

// lookupTranslation finds a translation in the dictionary or generates a default.
func (s *StubTranslator) lookupTranslation(text, targetLang string) string {
	if langDict, ok := s.config.Dictionary[targetLang]; ok {
		if translated, ok := langDict[text]; ok {
			return translated
		}
	}
	// Default: prefix with language code
	return "[" + targetLang + "] " + text
}

// Health returns the health status of the stub translator.
func (s *StubTranslator) Health() HealthStatus {
	return HealthStatus{
		Healthy: true,
		Message: "stub translator ready",
	}
}
