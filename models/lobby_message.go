package models

import (
	"time"

	"gorm.io/gorm"
)

// LobbyMessage is immutable once created; ordering is by creation time.
type LobbyMessage struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	LobbyCode string         `json:"lobby_code" gorm:"not null;index"`
	UserID    uint           `json:"user_id" gorm:"not null"`
	Text      string         `json:"text" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty"`
}
