package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const geminiInstruction = `You translate short strings of text captured from camera frames (signs, labels, menus).
Reply with the translation only. No quotes, no explanations, no transliteration.
If the text is already in the target language, reply with it unchanged.`

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiTranslator asks a Gemini model for translations.
type GeminiTranslator struct {
	client *genai.Client
	model  string
	gen    contentGenerator
}

// NewGeminiTranslator opens a client with the given API key.
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	m := cl.GenerativeModel(model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "text/plain",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(geminiInstruction)},
	}

	return &GeminiTranslator{client: cl, model: model, gen: m}, nil
}

func (g *GeminiTranslator) Name() string { return "gemini" }

// Translate sends one prompt per text.
func (g *GeminiTranslator) Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error) {
	prompt := fmt.Sprintf("Source language: %s\nTarget language: %s\nText:\n%s",
		ParseLanguage(sourceLang), ParseLanguage(targetLang), text)

	resp, err := g.gen.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Translation{}, fmt.Errorf("gemini translate: %w", err)
	}

	out := strings.TrimSpace(firstText(resp))
	if out == "" {
		return Translation{}, ErrEmptyTranslation
	}

	return Translation{
		SourceText:     text,
		TranslatedText: out,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
	}, nil
}

func (g *GeminiTranslator) Health() HealthStatus {
	return HealthStatus{Healthy: true, Message: "gemini " + g.model}
}

// Close releases the underlying client.
func (g *GeminiTranslator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
