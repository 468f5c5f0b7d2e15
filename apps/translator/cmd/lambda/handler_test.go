package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"lenslation/packages/go/backend/translation"
)

func newTestHandler(t *testing.T, failures map[string]bool) *handler {
	t.Helper()
	return &handler{
		translator: translation.NewStubTranslator(&translation.StubTranslatorConfig{
			Dictionary: translation.DefaultStubTranslatorConfig().Dictionary,
			Failures:   failures,
		}),
		logger: zaptest.NewLogger(t).Sugar(),
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		request  translation.LambdaRequest
		errorMsg string
	}{
		{name: "valid request", request: translation.LambdaRequest{Texts: []string{"Hola"}, SourceLang: "es", TargetLang: "en"}},
		{name: "empty texts", request: translation.LambdaRequest{Texts: []string{}}},
		{name: "nil texts", request: translation.LambdaRequest{SourceLang: "es", TargetLang: "en"}, errorMsg: "texts is required"},
		{name: "too many texts", request: translation.LambdaRequest{Texts: make([]string, maxTexts+1)}, errorMsg: "at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.request)
			if tt.errorMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Fatalf("expected error containing %q, got %v", tt.errorMsg, err)
			}
		})
	}
}

func TestHandleTranslatesInOrder(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, nil)
	resp := h.handle(context.Background(), translation.LambdaRequest{
		Texts:      []string{"Hola", "Bienvenido", "Gato"},
		SourceLang: "es",
		TargetLang: "en",
	})
	if resp.Error != "" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
	want := []string{"Hello", "Welcome", "[en] Gato"}
	if strings.Join(resp.Translations, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, resp.Translations)
	}
}

func TestHandleUnknownCodesFallBackToEnglish(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, nil)
	resp := h.handle(context.Background(), translation.LambdaRequest{
		Texts:      []string{"Hola"},
		SourceLang: "es",
		TargetLang: "klingon",
	})
	if len(resp.Translations) != 1 || resp.Translations[0] != "Hello" {
		t.Fatalf("expected English fallback, got %+v", resp)
	}
}

func TestHandleReportsFailuresInBody(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, map[string]bool{"Adios": true})
	resp := h.handle(context.Background(), translation.LambdaRequest{
		Texts:      []string{"Hola", "Adios"},
		SourceLang: "es",
		TargetLang: "en",
	})
	if resp.Error == "" || resp.Translations != nil {
		t.Fatalf("expected error response, got %+v", resp)
	}

	resp = h.handle(context.Background(), translation.LambdaRequest{SourceLang: "es", TargetLang: "en"})
	if resp.Error != "texts is required" {
		t.Fatalf("expected validation error, got %+v", resp)
	}
}

func TestResponseRoundTripsThroughLambdaTranslatorFormat(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, nil)
	var req translation.LambdaRequest
	if err := json.Unmarshal([]byte(`{"texts":["Hola"],"source_lang":"es","target_lang":"en"}`), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	body, err := json.Marshal(h.handle(context.Background(), req))
	if err != nil {
		t.Fatalf("encode response: %v", err)
	}
	if string(body) != `{"translations":["Hello"]}` {
		t.Fatalf("unexpected wire body %s", body)
	}
}

func TestIsWarmupEvent(t *testing.T) {
	t.Parallel()

	if !isWarmupEvent(json.RawMessage(`{"source":"warmup","concurrency":2}`)) {
		t.Fatal("expected warmup event")
	}
	if isWarmupEvent(json.RawMessage(`{"texts":["Hola"]}`)) || isWarmupEvent(json.RawMessage(`not json`)) {
		t.Fatal("unexpected warmup detection")
	}
}

func TestNewTranslatorWithoutKeyUsesDictionary(t *testing.T) {
	t.Parallel()

	tr, err := newTranslator(context.Background(), "", "")
	if err != nil {
		t.Fatalf("newTranslator: %v", err)
	}
	if tr.Name() != "stub" {
		t.Fatalf("expected stub translator, got %s", tr.Name())
	}
}
