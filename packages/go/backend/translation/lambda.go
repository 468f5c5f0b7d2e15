package translation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaRequest is the payload sent to the translator Lambda.
type LambdaRequest struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

// LambdaResponse is the payload returned by the translator Lambda.
type LambdaResponse struct {
	Translations []string `json:"translations"`
	Error        string   `json:"error,omitempty"`
}

// LambdaInvoker is the subset of the Lambda client used for translation.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaTranslator delegates translation to an AWS Lambda function.
type LambdaTranslator struct {
	client       LambdaInvoker
	functionName string
}

// NewLambdaTranslator loads the default AWS configuration and returns a
// translator bound to functionName. An empty region keeps the SDK default.
func NewLambdaTranslator(ctx context.Context, functionName, region string) (*LambdaTranslator, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewLambdaTranslatorWithClient(lambda.NewFromConfig(cfg), functionName), nil
}

// NewLambdaTranslatorWithClient wires an existing client.
func NewLambdaTranslatorWithClient(client LambdaInvoker, functionName string) *LambdaTranslator {
	return &LambdaTranslator{client: client, functionName: functionName}
}

func (l *LambdaTranslator) Name() string { return "lambda" }

// Translate invokes the function synchronously with a single-text batch.
func (l *LambdaTranslator) Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error) {
	payload, err := json.Marshal(LambdaRequest{
		Texts:      []string{text},
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return Translation{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(l.functionName),
		Payload:      payload,
	})
	if err != nil {
		return Translation{}, fmt.Errorf("failed to invoke %s: %w", l.functionName, err)
	}
	if result.FunctionError != nil {
		return Translation{}, fmt.Errorf("lambda error: %s", *result.FunctionError)
	}

	var resp LambdaResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return Translation{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Error != "" {
		return Translation{}, fmt.Errorf("translator error: %s", resp.Error)
	}
	if len(resp.Translations) != 1 {
		return Translation{}, fmt.Errorf("translator returned %d translations for 1 text", len(resp.Translations))
	}
	if resp.Translations[0] == "" {
		return Translation{}, ErrEmptyTranslation
	}

	return Translation{
		SourceText:     text,
		TranslatedText: resp.Translations[0],
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
	}, nil
}

func (l *LambdaTranslator) Health() HealthStatus {
	if l.functionName == "" {
		return HealthStatus{Healthy: false, Message: "lambda function name not configured"}
	}
	return HealthStatus{Healthy: true, Message: "lambda " + l.functionName}
}
