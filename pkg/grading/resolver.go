package grading

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ErrPolicyNotFound is returned by a PolicySource when the referenced policy does not exist.
var ErrPolicyNotFound = errors.New("grading policy not found")

// PolicySource loads stored policies by identifier.
type PolicySource interface {
	FindPolicy(ctx context.Context, id string) (Policy, error)
}

// Resolution is the outcome of resolving a policy reference.
type Resolution struct {
	Policy Policy
	// Fallback is set when the built-in policy was used in place of a missing reference.
	Fallback bool
}

// Resolver picks the policy that applies to a question.
type Resolver struct {
	source   PolicySource
	fallback Policy
	logger   zerolog.Logger
}

// NewResolver builds a resolver. fallback is copied and never modified afterwards.
func NewResolver(source PolicySource, fallback Policy, logger zerolog.Logger) *Resolver {
	return &Resolver{
		source:   source,
		fallback: fallback,
		logger:   logger.With().Str("component", "policy_resolver").Logger(),
	}
}

// Default returns the built-in policy.
func (r *Resolver) Default() Policy {
	return r.fallback
}

// Resolve returns the stored policy for ref, or the built-in policy when ref is empty or cannot be loaded.
// It never fails: missing configuration must not block grading.
func (r *Resolver) Resolve(ctx context.Context, ref *string) Resolution {
	if ref == nil || strings.TrimSpace(*ref) == "" || r.source == nil {
		return Resolution{Policy: r.fallback}
	}

	policy, err := r.source.FindPolicy(ctx, strings.TrimSpace(*ref))
	switch {
	case errors.Is(err, ErrPolicyNotFound):
		r.logger.Info().Str("policy_id", *ref).Msg("policy missing, using default")
		return Resolution{Policy: r.fallback, Fallback: true}
	case err != nil:
		r.logger.Warn().Err(err).Str("policy_id", *ref).Msg("policy lookup failed, using default")
		return Resolution{Policy: r.fallback, Fallback: true}
	case strings.TrimSpace(policy.Template) == "" || strings.TrimSpace(policy.Model) == "":
		r.logger.Warn().Str("policy_id", *ref).Msg("stored policy incomplete, using default")
		return Resolution{Policy: r.fallback, Fallback: true}
	}

	return Resolution{Policy: policy}
}
