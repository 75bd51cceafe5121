package models

import "gorm.io/gorm"

// Question belongs to a subject; DisplayOrder is unique within the subject.
type Question struct {
	ID                       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	SubjectID                string `gorm:"type:varchar(36);not null;uniqueIndex:idx_question_subject_order" json:"subject_id"`
	QuestionText             string `gorm:"type:text;not null" json:"question_text"`
	ExpectedAnswerGuidelines string `gorm:"type:text;not null" json:"expected_answer_guidelines"`
	DisplayOrder             int    `gorm:"not null;uniqueIndex:idx_question_subject_order" json:"display_order"`
}

// BeforeCreate assigns a UUID when none was provided.
func (q *Question) BeforeCreate(_ *gorm.DB) error {
	ensureID(&q.ID)
	return nil
}
