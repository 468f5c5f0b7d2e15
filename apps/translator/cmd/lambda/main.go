// Package main is the entry point for the translator Lambda function.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"lenslation/packages/go/backend/logging"
	"lenslation/packages/go/backend/translation"
)

func main() {
	logger, err := logging.New(os.Getenv("LENS_LOG_LEVEL"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	translator, err := newTranslator(context.Background(), os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		logger.Fatalw("failed to create translator", "error", err)
	}
	logger.Infow("translator lambda starting", "translator", translator.Name())

	h := &handler{translator: translator, logger: logger}
	lambda.Start(func(ctx context.Context, event json.RawMessage) (any, error) {
		if isWarmupEvent(event) {
			return warmupResponse{Status: "warm"}, nil
		}
		var req translation.LambdaRequest
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, err
		}
		return h.handle(ctx, req), nil
	})
}

// newTranslator prefers Gemini when an API key is configured and falls back
// to the dictionary translator otherwise.
func newTranslator(ctx context.Context, apiKey, model string) (translation.Translator, error) {
	if apiKey == "" {
		return translation.NewStubTranslator(&translation.StubTranslatorConfig{
			Dictionary: translation.DefaultStubTranslatorConfig().Dictionary,
		}), nil
	}
	t, err := translation.NewGeminiTranslator(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	return t, nil
}
