package models

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Text       string         `json:"text" gorm:"not null"`
	Category   string         `json:"category" gorm:"index"`   // e.g. javascript, go, sql
	Difficulty string         `json:"difficulty" gorm:"index"` // easy, medium, hard
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}
