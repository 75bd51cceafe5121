package dto

import (
	"time"

	"github.com/noah-isme/correcteur-api/internal/models"
)

// SubmitAnswerRequest is one student answer to one question.
type SubmitAnswerRequest struct {
	SubjectID     string  `json:"subject_id" validate:"required,uuid"`
	StudentName   string  `json:"student_name" validate:"required,max=255"`
	SubmissionID  *string `json:"submission_id" validate:"omitempty,uuid"`
	QuestionID    string  `json:"question_id" validate:"required,uuid"`
	StudentAnswer string  `json:"student_answer" validate:"required"`
}

// SubmitAnswerResponse is returned for graded and degraded answers alike. Score is null when degraded.
type SubmitAnswerResponse struct {
	SubmissionID string `json:"submission_id"`
	QuestionID   string `json:"question_id"`
	Score        *int   `json:"score"`
	Feedback     string `json:"feedback"`
	IsValid      *bool  `json:"is_valid"`
	Status       string `json:"status"`
}

// AnswerResponse is one stored attempt.
type AnswerResponse struct {
	ID            string    `json:"id"`
	QuestionID    string    `json:"question_id"`
	StudentAnswer string    `json:"student_answer"`
	AIFeedback    *string   `json:"ai_feedback"`
	Score         *int      `json:"score"`
	IsValid       *bool     `json:"is_valid"`
	Status        string    `json:"status"`
	Model         string    `json:"ai_model"`
	CreatedAt     time.Time `json:"created_at"`
}

// SubmissionResponse is the admin review of a submission with its full answer history, oldest first.
type SubmissionResponse struct {
	ID          string           `json:"id"`
	SubjectID   string           `json:"subject_id"`
	StudentName string           `json:"student_name"`
	SubmittedAt time.Time        `json:"submitted_at"`
	Answers     []AnswerResponse `json:"answers"`
}

// NewSubmissionResponse maps a stored submission.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	answers := make([]AnswerResponse, 0, len(submission.Answers))
	for _, answer := range submission.Answers {
		answers = append(answers, AnswerResponse{
			ID:            answer.ID,
			QuestionID:    answer.QuestionID,
			StudentAnswer: answer.StudentAnswer,
			AIFeedback:    answer.AIFeedback,
			Score:         answer.Score,
			IsValid:       answer.IsValid,
			Status:        answer.Status,
			Model:         answer.Model,
			CreatedAt:     answer.CreatedAt,
		})
	}

	return SubmissionResponse{
		ID:          submission.ID,
		SubjectID:   submission.SubjectID,
		StudentName: submission.StudentName,
		SubmittedAt: submission.SubmittedAt,
		Answers:     answers,
	}
}

// ExtractReferenceResponse carries reference text extracted from an uploaded document.
type ExtractReferenceResponse struct {
	ReferenceText string `json:"reference_text"`
	MimeType      string `json:"mime_type"`
	SizeBytes     int64  `json:"size_bytes"`
}
