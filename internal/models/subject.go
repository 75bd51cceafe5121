package models

import (
	"slices"
	"sort"
	"time"

	"gorm.io/gorm"
)

// QuestionsPerSubject is the number of questions every subject carries.
const QuestionsPerSubject = 4

// Subject is a reference document with its questions, reachable by students through its code.
type Subject struct {
	ID            string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code          string         `gorm:"size:64;not null;uniqueIndex" json:"code"`
	ReferenceText string         `gorm:"type:text;not null" json:"reference_text"`
	PromptID      *string        `gorm:"type:varchar(36);index" json:"prompt_id"`
	Prompt        *GradingPolicy `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"prompt,omitempty"`
	Questions     []Question     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was provided.
func (s *Subject) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// QuestionByID returns the question of this subject with the given identifier.
func (s Subject) QuestionByID(id string) (Question, bool) {
	for _, question := range s.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// SortQuestions orders questions by display order.
func (s *Subject) SortQuestions() {
	sort.SliceStable(s.Questions, func(i, j int) bool {
		return s.Questions[i].DisplayOrder < s.Questions[j].DisplayOrder
	})
}

// SortedQuestions returns a copy of the questions ordered by display order, leaving the subject untouched.
func (s Subject) SortedQuestions() []Question {
	questions := slices.Clone(s.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].DisplayOrder < questions[j].DisplayOrder
	})
	return questions
}
