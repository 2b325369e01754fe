package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Points       int            `json:"points" gorm:"not null;default:0"` // global points, spent on avatars
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Achievements []UserAchievement `json:"achievements,omitempty" gorm:"foreignKey:UserID"`
	Avatars      []UserAvatar      `json:"avatars,omitempty" gorm:"foreignKey:UserID"`
}
