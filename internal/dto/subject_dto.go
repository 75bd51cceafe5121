package dto

import (
	"time"

	"github.com/noah-isme/correcteur-api/internal/models"
)

// QuestionRequest is one authored question; its display order is its position in the request.
type QuestionRequest struct {
	QuestionText             string `json:"question_text" validate:"required"`
	ExpectedAnswerGuidelines string `json:"expected_answer_guidelines" validate:"required"`
}

// SubjectRequest creates or replaces a subject and its four questions.
type SubjectRequest struct {
	ReferenceText string            `json:"reference_text" validate:"required"`
	PromptID      *string           `json:"prompt_id" validate:"omitempty,uuid"`
	Questions     []QuestionRequest `json:"questions" validate:"len=4,dive"`
}

// QuestionResponse is the admin view of a question.
type QuestionResponse struct {
	ID                       string `json:"id"`
	QuestionText             string `json:"question_text"`
	ExpectedAnswerGuidelines string `json:"expected_answer_guidelines"`
	DisplayOrder             int    `json:"display_order"`
}

// SubjectResponse is the admin view of a subject.
type SubjectResponse struct {
	ID            string             `json:"id"`
	Code          string             `json:"code"`
	ReferenceText string             `json:"reference_text"`
	PromptID      *string            `json:"prompt_id"`
	Questions     []QuestionResponse `json:"questions"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewSubjectResponse maps a stored subject, questions ordered by display order.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	questions := make([]QuestionResponse, 0, len(subject.Questions))
	for _, question := range subject.SortedQuestions() {
		questions = append(questions, QuestionResponse{
			ID:                       question.ID,
			QuestionText:             question.QuestionText,
			ExpectedAnswerGuidelines: question.ExpectedAnswerGuidelines,
			DisplayOrder:             question.DisplayOrder,
		})
	}

	return SubjectResponse{
		ID:            subject.ID,
		Code:          subject.Code,
		ReferenceText: subject.ReferenceText,
		PromptID:      subject.PromptID,
		Questions:     questions,
		CreatedAt:     subject.CreatedAt,
		UpdatedAt:     subject.UpdatedAt,
	}
}

// NewSubjectResponseSlice maps a list of stored subjects.
func NewSubjectResponseSlice(subjects []models.Subject) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(subject))
	}
	return responses
}

// StudentQuestion is what a student sees of a question: no grading guidelines.
type StudentQuestion struct {
	ID           string `json:"id"`
	QuestionText string `json:"question_text"`
	DisplayOrder int    `json:"display_order"`
}

// StudentSubjectResponse is the student access page payload.
type StudentSubjectResponse struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	ReferenceText string            `json:"reference_text"`
	Questions     []StudentQuestion `json:"questions"`
}

// NewStudentSubjectResponse strips a subject down to the student view.
func NewStudentSubjectResponse(subject models.Subject) StudentSubjectResponse {
	questions := make([]StudentQuestion, 0, len(subject.Questions))
	for _, question := range subject.SortedQuestions() {
		questions = append(questions, StudentQuestion{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			DisplayOrder: question.DisplayOrder,
		})
	}

	return StudentSubjectResponse{
		ID:            subject.ID,
		Code:          subject.Code,
		ReferenceText: subject.ReferenceText,
		Questions:     questions,
	}
}
