package grading

import (
	"fmt"
	"strings"
)

// Template placeholders substituted by Compile.
const (
	PlaceholderReferenceText            = "{{referenceText}}"
	PlaceholderQuestionText             = "{{questionText}}"
	PlaceholderExpectedAnswerGuidelines = "{{expectedAnswerGuidelines}}"
	PlaceholderStudentAnswer            = "{{studentAnswer}}"
)

// Placeholders lists every placeholder a template may use.
func Placeholders() []string {
	return []string{
		PlaceholderReferenceText,
		PlaceholderQuestionText,
		PlaceholderExpectedAnswerGuidelines,
		PlaceholderStudentAnswer,
	}
}

// Vars carries the values inserted into a template. QuestionID is not a placeholder;
// it is echoed in the output contract so the verdict can be cross-checked.
type Vars struct {
	QuestionID               string
	ReferenceText            string
	QuestionText             string
	ExpectedAnswerGuidelines string
	StudentAnswer            string
}

const outputContract = `

Reponds uniquement avec un objet JSON, sans texte autour, exactement de cette forme :
{
  "question_id": "%s",
  "score": <nombre entier entre 0 et 100>,
  "feedback": "<ton commentaire pedagogique>"
}
Le champ question_id doit reprendre exactement la valeur ci-dessus.`

// OutputContract returns the closing instruction appended to every compiled prompt.
func OutputContract(questionID string) string {
	return fmt.Sprintf(outputContract, questionID)
}

// Compile replaces every occurrence of each placeholder with its value and appends the output contract.
// Values are inserted verbatim and are not rescanned, so a student answer containing a placeholder
// is left as typed.
func Compile(template string, vars Vars) string {
	replacer := strings.NewReplacer(
		PlaceholderReferenceText, vars.ReferenceText,
		PlaceholderQuestionText, vars.QuestionText,
		PlaceholderExpectedAnswerGuidelines, vars.ExpectedAnswerGuidelines,
		PlaceholderStudentAnswer, vars.StudentAnswer,
	)

	return replacer.Replace(template) + OutputContract(vars.QuestionID)
}
