package translation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

type fakeInvoker struct {
	handler func(req LambdaRequest) (*lambda.InvokeOutput, error)
	lastFn  string
}

func (f *fakeInvoker) Invoke(_ context.Context, params *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.lastFn = aws.ToString(params.FunctionName)
	var req LambdaRequest
	if err := json.Unmarshal(params.Payload, &req); err != nil {
		return nil, err
	}
	return f.handler(req)
}

func respond(t *testing.T, resp LambdaResponse) *lambda.InvokeOutput {
	t.Helper()
	payload, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &lambda.InvokeOutput{StatusCode: 200, Payload: payload}
}

func TestLambdaTranslator_Translate(t *testing.T) {
	t.Parallel()

	invoker := &fakeInvoker{}
	invoker.handler = func(req LambdaRequest) (*lambda.InvokeOutput, error) {
		if req.SourceLang != "es" || req.TargetLang != "en" {
			t.Errorf("unexpected languages %s->%s", req.SourceLang, req.TargetLang)
		}
		if len(req.Texts) != 1 || req.Texts[0] != "Salida" {
			t.Errorf("unexpected texts %v", req.Texts)
		}
		return respond(t, LambdaResponse{Translations: []string{"Exit"}}), nil
	}

	translator := NewLambdaTranslatorWithClient(invoker, "lenslation-translator")
	result, err := translator.Translate(context.Background(), "Salida", "es", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.TranslatedText != "Exit" {
		t.Fatalf("expected Exit, got %q", result.TranslatedText)
	}
	if invoker.lastFn != "lenslation-translator" {
		t.Fatalf("invoked wrong function %q", invoker.lastFn)
	}
}

func TestLambdaTranslator_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler func(t *testing.T) (*lambda.InvokeOutput, error)
		want    string
	}{
		{
			name: "invoke failure",
			handler: func(*testing.T) (*lambda.InvokeOutput, error) {
				return nil, errors.New("throttled")
			},
			want: "throttled",
		},
		{
			name: "function error",
			handler: func(*testing.T) (*lambda.InvokeOutput, error) {
				return &lambda.InvokeOutput{FunctionError: aws.String("Unhandled"), Payload: []byte(`{}`)}, nil
			},
			want: "Unhandled",
		},
		{
			name: "translator error",
			handler: func(t *testing.T) (*lambda.InvokeOutput, error) {
				return respond(t, LambdaResponse{Error: "model unavailable"}), nil
			},
			want: "model unavailable",
		},
		{
			name: "wrong count",
			handler: func(t *testing.T) (*lambda.InvokeOutput, error) {
				return respond(t, LambdaResponse{Translations: []string{"a", "b"}}), nil
			},
			want: "2 translations",
		},
		{
			name: "bad payload",
			handler: func(*testing.T) (*lambda.InvokeOutput, error) {
				return &lambda.InvokeOutput{Payload: []byte("not json")}, nil
			},
			want: "parse response",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			invoker := &fakeInvoker{handler: func(LambdaRequest) (*lambda.InvokeOutput, error) { return tc.handler(t) }}
			translator := NewLambdaTranslatorWithClient(invoker, "fn")
			_, err := translator.Translate(context.Background(), "Hola", "es", "en")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLambdaTranslator_Health(t *testing.T) {
	t.Parallel()

	if NewLambdaTranslatorWithClient(&fakeInvoker{}, "").Health().Healthy {
		t.Fatal("expected unhealthy without function name")
	}
	if !NewLambdaTranslatorWithClient(&fakeInvoker{}, "fn").Health().Healthy {
		t.Fatal("expected healthy with function name")
	}
}
