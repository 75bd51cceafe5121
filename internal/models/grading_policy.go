package models

import (
	"time"

	"gorm.io/gorm"
)

// GradingPolicy is a reusable grading template and model choice authored by a teacher.
type GradingPolicy struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Template  string    `gorm:"column:ai_prompt;type:text;not null" json:"ai_prompt"`
	Model     string    `gorm:"column:ai_model;size:64;not null" json:"ai_model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (GradingPolicy) TableName() string {
	return "prompts"
}

// BeforeCreate assigns a UUID when none was provided.
func (p *GradingPolicy) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
