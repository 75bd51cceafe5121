package ai

import (
	"context"
	"errors"
)

// ErrEvaluationUnavailable covers every way a model call can fail: transport errors, timeouts,
// unknown models, provider errors and empty replies. Callers are not told which one happened.
var ErrEvaluationUnavailable = errors.New("evaluation unavailable")

// Request is a single model call.
type Request struct {
	Model  string
	Prompt string
}

// Invoker sends a compiled prompt to a generative model and returns its raw JSON text.
// Implementations make at most one provider call per Invoke and never retry.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req Request) (string, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
