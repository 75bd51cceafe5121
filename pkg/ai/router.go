package ai

import (
	"context"
	"fmt"
	"strings"
)

// ModelRouter dispatches a request to the provider serving its model.
// gpt-* models go to OpenAI, everything else to Gemini.
type ModelRouter struct {
	Gemini Invoker
	OpenAI Invoker
}

// Invoke forwards req to the matching provider. A missing provider is reported as unavailability.
func (r ModelRouter) Invoke(ctx context.Context, req Request) (string, error) {
	target, provider := r.route(req.Model)
	if target == nil {
		return "", fmt.Errorf("%w: no %s provider configured for model %q", ErrEvaluationUnavailable, provider, req.Model)
	}
	return target.Invoke(ctx, req)
}

func (r ModelRouter) route(model string) (Invoker, string) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-") {
		return r.OpenAI, "openai"
	}
	return r.Gemini, "gemini"
}
