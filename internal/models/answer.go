package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer outcome states.
const (
	AnswerStatusGraded   = "graded"
	AnswerStatusDegraded = "degraded"
)

// Answer is one attempt at a question. Rows are never updated; a resubmission appends a new row.
type Answer struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	SubmissionID  string         `gorm:"type:varchar(36);not null;index:idx_answer_submission_question" json:"submission_id"`
	QuestionID    string         `gorm:"type:varchar(36);not null;index:idx_answer_submission_question" json:"question_id"`
	StudentAnswer string         `gorm:"type:text;not null" json:"student_answer"`
	AIFeedback    *string        `gorm:"type:text" json:"ai_feedback"`
	IsValid       *bool          `json:"is_valid"`
	Score         *int           `json:"score"`
	Status        string         `gorm:"size:16;not null" json:"status"`
	Model         string         `gorm:"size:64" json:"model"`
	Verdict       datatypes.JSON `json:"verdict,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// BeforeCreate assigns a UUID when none was provided.
func (a *Answer) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// IsDegraded reports whether the answer was stored without a model verdict.
func (a Answer) IsDegraded() bool {
	return a.Status == AnswerStatusDegraded
}
