package translation

import (
	"context"
	"errors"
)

// ErrEmptyTranslation is returned by collaborators that answered without text.
var ErrEmptyTranslation = errors.New("translation: empty result")

// Translation represents a translated segment.
type Translation struct {
	// SourceText is the original text that was translated.
	SourceText string `json:"sourceText"`
	// TranslatedText is the translated result.
	TranslatedText string `json:"translatedText"`
	// SourceLang is the source language code.
	SourceLang string `json:"sourceLang"`
	// TargetLang is the target language code.
	TargetLang string `json:"targetLang"`
}

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Translator is the external translation collaborator. A non-nil error means
// the collaborator reported failure. Implementations must be safe for
// concurrent use: several requests may be in flight at once.
type Translator interface {
	// Name identifies the collaborator in logs and health output.
	Name() string

	// Translate converts a single text segment between language codes.
	Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error)

	// Health returns the current health status of the translator.
	Health() HealthStatus
}

// Func adapts a plain function to the Translator contract.
type Func func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error) {
	out, err := f(ctx, text, sourceLang, targetLang)
	if err != nil {
		return Translation{}, err
	}
	return Translation{SourceText: text, TranslatedText: out, SourceLang: sourceLang, TargetLang: targetLang}, nil
}

func (f Func) Health() HealthStatus { return HealthStatus{Healthy: true} }
