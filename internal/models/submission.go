package models

import (
	"time"

	"gorm.io/gorm"
)

// Submission groups one student's answers to a subject during a session.
type Submission struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SubjectID   string    `gorm:"type:varchar(36);not null;index" json:"subject_id"`
	StudentName string    `gorm:"size:255;not null" json:"student_name"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	Subject     Subject   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Answers     []Answer  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers,omitempty"`
}

// BeforeCreate assigns a UUID when none was provided.
func (s *Submission) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
