package models

import (
	"time"

	"gorm.io/gorm"
)

// UserAchievement records an unlock; the unique index makes a given
// (user, achievement) pair appear at most once.
type UserAchievement struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementID uint           `json:"achievement_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	LobbyCode     string         `json:"lobby_code"` // lobby of origin, optional
	Metadata      string         `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Achievement Achievement `json:"achievement,omitempty"`
}
