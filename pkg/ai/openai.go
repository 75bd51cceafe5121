package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIConfig defines configuration options for the OpenAI invoker.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIInvoker implements Invoker against the OpenAI chat completion API.
type OpenAIInvoker struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIInvoker builds a new invoker using the provided configuration.
func NewOpenAIInvoker(cfg OpenAIConfig) (*OpenAIInvoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIInvoker{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/correcteur-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_invoker").Logger(),
	}, nil
}

// Invoke sends the compiled prompt as the only message and requests a JSON object reply.
func (e *OpenAIInvoker) Invoke(parent context.Context, req Request) (string, error) {
	ctx, span := e.tracer.Start(parent, "openai.invoke", trace.WithAttributes(
		attribute.String("model", req.Model),
		attribute.Int("prompt.length", len(req.Prompt)),
	))
	defer span.End()

	fail := func(err error) (string, error) {
		aiFailures.WithLabelValues("openai", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Warn().Err(err).Str("model", req.Model).Msg("openai invocation failed")
		return "", fmt.Errorf("%w: openai: %v", ErrEvaluationUnavailable, err)
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	aiDuration.WithLabelValues("openai", req.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(err)
	}

	if len(resp.Choices) == 0 {
		return fail(fmt.Errorf("no choices returned"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return fail(fmt.Errorf("empty response"))
	}

	span.SetAttributes(attribute.Int("usage.total_tokens", resp.Usage.TotalTokens))
	span.SetStatus(codes.Ok, "completed")
	return content, nil
}
