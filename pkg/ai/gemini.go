package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

const geminiJSONMimeType = "application/json"

// GeminiConfig defines configuration options for the Gemini invoker.
type GeminiConfig struct {
	APIKey      string
	Temperature float32
	Logger      zerolog.Logger
}

// GeminiInvoker implements Invoker against the Gemini generateContent API.
type GeminiInvoker struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiInvoker opens a Gemini client shared by all invocations. Close releases it.
func NewGeminiInvoker(ctx context.Context, cfg GeminiConfig) (*GeminiInvoker, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	return &GeminiInvoker{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/correcteur-api/pkg/ai/gemini"),
		logger: cfg.Logger.With().Str("component", "gemini_invoker").Logger(),
	}, nil
}

// Close releases the underlying client.
func (g *GeminiInvoker) Close() error {
	return g.client.Close()
}

// Invoke sends the compiled prompt as the sole content with a JSON response MIME type.
func (g *GeminiInvoker) Invoke(parent context.Context, req Request) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.invoke", trace.WithAttributes(
		attribute.String("model", req.Model),
		attribute.Int("prompt.length", len(req.Prompt)),
	))
	defer span.End()

	fail := func(err error) (string, error) {
		aiFailures.WithLabelValues("gemini", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Warn().Err(err).Str("model", req.Model).Msg("gemini invocation failed")
		return "", fmt.Errorf("%w: gemini: %v", ErrEvaluationUnavailable, err)
	}

	name := geminiModelName(req.Model)
	if name == "" {
		return fail(fmt.Errorf("model name is required"))
	}
	model := g.client.GenerativeModel(name)
	g.configure(model)

	start := time.Now()
	resp, err := model.GenerateContent(ctx, promptParts(req.Prompt)...)
	aiDuration.WithLabelValues("gemini", req.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(err)
	}

	text := strings.TrimSpace(firstText(resp))
	if text == "" {
		return fail(fmt.Errorf("empty response"))
	}

	span.SetStatus(codes.Ok, "completed")
	return text, nil
}

// configure asks for a JSON reply at the configured temperature.
func (g *GeminiInvoker) configure(model *genai.GenerativeModel) {
	temperature := g.cfg.Temperature
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temperature,
		ResponseMIMEType: geminiJSONMimeType,
	}
}

func geminiModelName(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "models/")
}

// promptParts sends the compiled prompt as the only content part.
func promptParts(prompt string) []genai.Part {
	return []genai.Part{genai.Text(prompt)}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		var builder strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
		if builder.Len() > 0 {
			return builder.String()
		}
	}
	return ""
}
