package dto

import (
	"time"

	"github.com/noah-isme/correcteur-api/internal/models"
)

// PolicyRequest creates or updates a grading policy.
type PolicyRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Template string `json:"ai_prompt" validate:"required"`
	Model    string `json:"ai_model" validate:"required,grading_model"`
}

// PolicyResponse is the admin representation of a grading policy.
type PolicyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Template  string    `json:"ai_prompt"`
	Model     string    `json:"ai_model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPolicyResponse maps a stored policy.
func NewPolicyResponse(policy models.GradingPolicy) PolicyResponse {
	return PolicyResponse{
		ID:        policy.ID,
		Name:      policy.Name,
		Template:  policy.Template,
		Model:     policy.Model,
		CreatedAt: policy.CreatedAt,
		UpdatedAt: policy.UpdatedAt,
	}
}

// NewPolicyResponseSlice maps a list of stored policies.
func NewPolicyResponseSlice(policies []models.GradingPolicy) []PolicyResponse {
	responses := make([]PolicyResponse, 0, len(policies))
	for _, policy := range policies {
		responses = append(responses, NewPolicyResponse(policy))
	}
	return responses
}

// PolicyTestRequest runs an unsaved template against sample data. Blank sample fields are filled with
// built-in examples.
type PolicyTestRequest struct {
	Template                 string `json:"ai_prompt" validate:"required"`
	Model                    string `json:"ai_model" validate:"required,grading_model"`
	ReferenceText            string `json:"reference_text"`
	QuestionText             string `json:"question_text"`
	ExpectedAnswerGuidelines string `json:"expected_answer_guidelines"`
	StudentAnswer            string `json:"student_answer"`
}

// PolicyTestResponse reports the compiled prompt and the verdict it produced.
type PolicyTestResponse struct {
	Model          string `json:"ai_model"`
	CompiledPrompt string `json:"compiled_prompt"`
	Score          int    `json:"score"`
	Feedback       string `json:"feedback"`
	IsValid        bool   `json:"is_valid"`
}
