package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortedQuestionsReturnsOrderedCopy(t *testing.T) {
	subject := Subject{Questions: []Question{
		{ID: "q2", DisplayOrder: 2},
		{ID: "q4", DisplayOrder: 4},
		{ID: "q1", DisplayOrder: 1},
		{ID: "q3", DisplayOrder: 3},
	}}

	sorted := subject.SortedQuestions()
	require.Len(t, sorted, 4)
	for i, question := range sorted {
		require.Equal(t, i+1, question.DisplayOrder)
	}

	require.Equal(t, "q2", subject.Questions[0].ID)
	require.Equal(t, "q1", subject.Questions[2].ID)

	sorted[0].ID = "changed"
	require.Equal(t, "q2", subject.Questions[0].ID)
	require.NotEqual(t, "changed", subject.Questions[2].ID)
}

func TestSortQuestionsOrdersInPlace(t *testing.T) {
	subject := Subject{Questions: []Question{{ID: "b", DisplayOrder: 2}, {ID: "a", DisplayOrder: 1}}}

	subject.SortQuestions()
	require.Equal(t, "a", subject.Questions[0].ID)
	require.Equal(t, "b", subject.Questions[1].ID)

	require.Empty(t, Subject{}.SortedQuestions())
}
