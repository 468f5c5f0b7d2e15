package main

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"lenslation/packages/go/backend/translation"
)

// maxTexts bounds a single invocation.
const maxTexts = 128

const warmupSource = "warmup"

type warmupResponse struct {
	Status string `json:"status"`
}

// isWarmupEvent reports whether the scheduler sent a keep-warm ping.
func isWarmupEvent(event json.RawMessage) bool {
	var ping struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(event, &ping); err != nil {
		return false
	}
	return ping.Source == warmupSource
}

type handler struct {
	translator translation.Translator
	logger     *zap.SugaredLogger
}

// handle translates every text in order. Errors are reported in the response
// body so the caller can distinguish them from invocation failures.
func (h *handler) handle(ctx context.Context, req translation.LambdaRequest) *translation.LambdaResponse {
	if err := validateRequest(req); err != nil {
		return &translation.LambdaResponse{Error: err.Error()}
	}
	if len(req.Texts) == 0 {
		return &translation.LambdaResponse{Translations: []string{}}
	}

	// Unknown codes fall back to English.
	source := translation.ParseLanguage(req.SourceLang)
	target := translation.ParseLanguage(req.TargetLang)

	out := make([]string, 0, len(req.Texts))
	for i, text := range req.Texts {
		result, err := h.translator.Translate(ctx, text, source.Code(), target.Code())
		if err != nil {
			h.logger.Warnw("translation failed", "index", i, "source", source.Code(), "target", target.Code(), "error", err)
			return &translation.LambdaResponse{Error: fmt.Sprintf("translation failed for text %d: %v", i, err)}
		}
		out = append(out, result.TranslatedText)
	}
	h.logger.Debugw("translated batch", "texts", len(out), "source", source.Code(), "target", target.Code())
	return &translation.LambdaResponse{Translations: out}
}

// validateRequest checks the request is valid.
func validateRequest(req translation.LambdaRequest) error {
	if req.Texts == nil {
		return fmt.Errorf("texts is required")
	}
	if len(req.Texts) > maxTexts {
		return fmt.Errorf("at most %d texts per request, got %d", maxTexts, len(req.Texts))
	}
	return nil
}
