// Package codegen produces short, human-memorable subject codes of the form word-word-NN.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// DefaultMaxAttempts bounds the uniqueness retry loop.
const DefaultMaxAttempts = 10

// ErrAttemptsExhausted is returned when every generated code collided with an existing one.
var ErrAttemptsExhausted = errors.New("could not generate a unique code")

// ExistsFunc reports whether a code is already taken in the store.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator builds codes from a fixed word list and a random source.
type Generator struct {
	words []string
	mu    sync.Mutex
	intn  func(n int) int
}

// New returns a generator drawing from src. A nil source uses the runtime's
// concurrency-safe global generator.
func New(src rand.Source) *Generator {
	g := &Generator{words: frenchWords}
	if src == nil {
		g.intn = rand.IntN
		return g
	}

	rng := rand.New(src)
	g.intn = func(n int) int {
		g.mu.Lock()
		defer g.mu.Unlock()
		return rng.IntN(n)
	}
	return g
}

// Generate returns a code such as "soleil-tortue-42". The number is in [10,99].
func (g *Generator) Generate() string {
	first := g.words[g.intn(len(g.words))]
	second := g.words[g.intn(len(g.words))]
	number := g.intn(90) + 10
	return fmt.Sprintf("%s-%s-%d", first, second, number)
}

// Unique generates codes until exists reports a free one, giving up after maxAttempts.
// The check is not atomic with the later insert; callers keep a unique index as the final guard.
func (g *Generator) Unique(ctx context.Context, maxAttempts int, exists ExistsFunc) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := g.Generate()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code %q: %w", code, err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, maxAttempts)
}
