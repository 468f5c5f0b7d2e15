package translation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

type fakeGenerator struct {
	reply  *genai.GenerateContentResponse
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, p := range parts {
		if text, ok := p.(genai.Text); ok {
			f.prompt += string(text)
		}
	}
	return f.reply, f.err
}

func textReply(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(s)}},
		}},
	}
}

func TestGeminiTranslator_Translate(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: textReply("  Exit\n")}
	translator := &GeminiTranslator{model: DefaultGeminiModel, gen: gen}

	result, err := translator.Translate(context.Background(), "Salida", "es", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.TranslatedText != "Exit" {
		t.Fatalf("expected trimmed Exit, got %q", result.TranslatedText)
	}
	if !strings.Contains(gen.prompt, "Spanish") || !strings.Contains(gen.prompt, "English") {
		t.Fatalf("prompt should name both languages: %q", gen.prompt)
	}
	if !strings.HasSuffix(gen.prompt, "Salida") {
		t.Fatalf("prompt should end with the source text: %q", gen.prompt)
	}
}

func TestGeminiTranslator_EmptyReply(t *testing.T) {
	t.Parallel()

	translator := &GeminiTranslator{gen: &fakeGenerator{reply: &genai.GenerateContentResponse{}}}
	if _, err := translator.Translate(context.Background(), "Hola", "es", "en"); !errors.Is(err, ErrEmptyTranslation) {
		t.Fatalf("expected ErrEmptyTranslation, got %v", err)
	}
}

func TestGeminiTranslator_Error(t *testing.T) {
	t.Parallel()

	translator := &GeminiTranslator{gen: &fakeGenerator{err: errors.New("quota")}}
	if _, err := translator.Translate(context.Background(), "Hola", "es", "en"); err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestNewGeminiTranslator_RequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGeminiTranslator(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
