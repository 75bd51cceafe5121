package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedVerdict is returned when the model output does not match the verdict contract.
var ErrMalformedVerdict = errors.New("malformed verdict")

// DefaultAcceptanceThreshold is the score from which an answer counts as valid.
const DefaultAcceptanceThreshold = 50

const verdictSchemaURL = "verdict.schema.json"

const verdictSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["question_id", "score", "feedback"],
  "properties": {
    "question_id": {"type": "string", "minLength": 1},
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "feedback": {"type": "string", "minLength": 1}
  }
}`

// Verdict is the structured result of one evaluation.
type Verdict struct {
	QuestionID string `json:"question_id"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
}

// Accepted reports whether the score reaches threshold.
func (v Verdict) Accepted(threshold int) bool {
	return v.Score >= threshold
}

// VerdictParser validates raw model output against the verdict schema.
type VerdictParser struct {
	schema *jsonschema.Schema
}

// NewVerdictParser compiles the verdict schema.
func NewVerdictParser() *VerdictParser {
	return &VerdictParser{schema: jsonschema.MustCompileString(verdictSchemaURL, verdictSchema)}
}

// Parse decodes raw into a Verdict. Out-of-range or non-integer scores, blank feedback and
// non-JSON payloads are rejected with ErrMalformedVerdict; nothing is clamped or defaulted.
func (p *VerdictParser) Parse(raw string) (Verdict, error) {
	content := stripCodeFences(raw)
	if content == "" {
		return Verdict{}, fmt.Errorf("%w: empty payload", ErrMalformedVerdict)
	}

	var document interface{}
	if err := json.Unmarshal([]byte(content), &document); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	if err := p.schema.Validate(document); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	fields := document.(map[string]interface{})
	verdict := Verdict{
		QuestionID: strings.TrimSpace(fields["question_id"].(string)),
		Score:      int(fields["score"].(float64)),
		Feedback:   strings.TrimSpace(fields["feedback"].(string)),
	}

	if verdict.Feedback == "" {
		return Verdict{}, fmt.Errorf("%w: feedback is blank", ErrMalformedVerdict)
	}
	if verdict.QuestionID == "" {
		return Verdict{}, fmt.Errorf("%w: question_id is blank", ErrMalformedVerdict)
	}

	return verdict, nil
}

// stripCodeFences removes a surrounding ```json fence some models add despite JSON mode.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
