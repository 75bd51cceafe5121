package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileSubstitutesAndAppendsContract(t *testing.T) {
	compiled := Compile("Text: {{referenceText}} Q: {{questionText}}", Vars{
		QuestionID:               "q-1",
		ReferenceText:            "R",
		QuestionText:             "Q1",
		ExpectedAnswerGuidelines: "G",
		StudentAnswer:            "A",
	})

	require.True(t, strings.HasPrefix(compiled, "Text: R Q: Q1"))
	require.Contains(t, compiled, "Text: R")
	require.Contains(t, compiled, "Q: Q1")
	require.Equal(t, 1, strings.Count(compiled, OutputContract("q-1")))
	require.True(t, strings.HasSuffix(compiled, OutputContract("q-1")))
}

func TestCompileReplacesEveryOccurrence(t *testing.T) {
	template := "{{studentAnswer}} | {{studentAnswer}} | {{questionText}} and {{questionText}}"

	compiled := Compile(template, Vars{QuestionText: "why", StudentAnswer: "because"})

	body := strings.TrimSuffix(compiled, OutputContract(""))
	require.Equal(t, "because | because | why and why", body)
}

func TestCompileLeavesOtherTextUntouched(t *testing.T) {
	cases := []struct {
		name     string
		template string
		want     string
	}{
		{name: "no placeholders", template: "Corrige {{inconnu}} avec soin.", want: "Corrige {{inconnu}} avec soin."},
		{name: "subset", template: "Ref={{referenceText}}; attendu: {guidelines}", want: "Ref=texte; attendu: {guidelines}"},
		{name: "all four", template: "{{referenceText}}/{{questionText}}/{{expectedAnswerGuidelines}}/{{studentAnswer}}", want: "texte/question/pistes/reponse"},
		{name: "adjacent", template: "{{questionText}}{{questionText}}", want: "questionquestion"},
	}

	vars := Vars{
		QuestionID:               "id",
		ReferenceText:            "texte",
		QuestionText:             "question",
		ExpectedAnswerGuidelines: "pistes",
		StudentAnswer:            "reponse",
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			compiled := Compile(tc.template, vars)
			require.Equal(t, tc.want+OutputContract("id"), compiled)
		})
	}
}

func TestCompileInsertsValuesVerbatim(t *testing.T) {
	compiled := Compile("Reponse: {{studentAnswer}}", Vars{
		QuestionID:    "q",
		StudentAnswer: `<b>"{{referenceText}}"</b> & 100%`,
	})

	require.Contains(t, compiled, `Reponse: <b>"{{referenceText}}"</b> & 100%`)
}

func TestOutputContractNamesFields(t *testing.T) {
	contract := OutputContract("abc")

	require.Contains(t, contract, `"question_id": "abc"`)
	require.Contains(t, contract, `"score"`)
	require.Contains(t, contract, `"feedback"`)
	require.Contains(t, contract, "0 et 100")
}
