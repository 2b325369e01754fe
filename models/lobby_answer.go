package models

import (
	"time"

	"gorm.io/gorm"
)

type LobbyAnswer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	LobbyCode  string         `json:"lobby_code" gorm:"not null;index"`
	UserID     uint           `json:"user_id" gorm:"not null;index"`
	QuestionID uint           `json:"question_id" gorm:"not null"`
	OptionID   uint           `json:"option_id" gorm:"not null"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null"`
	Points     int            `json:"points" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User     User     `json:"user,omitempty"`
	Question Question `json:"question,omitempty"`
	Option   Option   `json:"option,omitempty"`
}
