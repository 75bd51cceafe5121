// Package grading turns a grading policy and a question into a model-ready prompt and
// turns the model's reply back into a validated verdict.
package grading

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

// Supported model identifiers. Policies referencing anything else are rejected at the authoring boundary.
const (
	ModelGemini25Flash     = "gemini-2.5-flash"
	ModelGemini25Pro       = "gemini-2.5-pro"
	ModelGemini20Flash     = "gemini-2.0-flash"
	ModelGeminiFlashLatest = "gemini-flash-latest"
	ModelGPT4oMini         = "gpt-4o-mini"
	ModelGPT4o             = "gpt-4o"

	// DefaultModel backs the built-in policy.
	DefaultModel = ModelGemini20Flash
	// DefaultPolicyName labels the built-in policy in logs and responses.
	DefaultPolicyName = "Correcteur par defaut"
)

//go:embed prompts/default.md
var defaultTemplate string

// SupportedModels lists the models a policy may reference, in display order.
func SupportedModels() []string {
	return []string{
		ModelGemini25Flash,
		ModelGemini25Pro,
		ModelGemini20Flash,
		ModelGeminiFlashLatest,
		ModelGPT4oMini,
		ModelGPT4o,
	}
}

// IsSupportedModel reports whether model belongs to the supported set.
func IsSupportedModel(model string) bool {
	for _, candidate := range SupportedModels() {
		if candidate == model {
			return true
		}
	}
	return false
}

// Policy is the effective grading configuration for one evaluation.
type Policy struct {
	ID       string
	Name     string
	Template string
	Model    string
}

// IsDefault reports whether the policy is the built-in one.
func (p Policy) IsDefault() bool {
	return p.ID == ""
}

// DefaultPolicy returns the built-in policy with the embedded template.
func DefaultPolicy() Policy {
	return Policy{
		Name:     DefaultPolicyName,
		Template: defaultTemplate,
		Model:    DefaultModel,
	}
}

// LoadDefaultPolicy builds the built-in policy, optionally replacing the embedded template
// with the contents of templatePath and the model with model.
func LoadDefaultPolicy(templatePath, model string) (Policy, error) {
	policy := DefaultPolicy()

	if path := strings.TrimSpace(templatePath); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Policy{}, fmt.Errorf("read default template: %w", err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return Policy{}, fmt.Errorf("default template %s is empty", path)
		}
		policy.Template = string(content)
	}

	if model = strings.TrimSpace(model); model != "" {
		if !IsSupportedModel(model) {
			return Policy{}, fmt.Errorf("unsupported default model %q", model)
		}
		policy.Model = model
	}

	return policy, nil
}
