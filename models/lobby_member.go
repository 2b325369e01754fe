package models

import (
	"time"

	"gorm.io/gorm"
)

// LobbyMember is the per-lobby membership row; Score is the session score,
// distinct from the user's global points.
type LobbyMember struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	LobbyCode string         `json:"lobby_code" gorm:"not null;uniqueIndex:idx_lobby_user"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_lobby_user"`
	Score     int            `json:"score" gorm:"not null;default:0"`
	JoinedAt  time.Time      `json:"joined_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty"`
}
