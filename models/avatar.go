package models

import (
	"time"

	"gorm.io/gorm"
)

type Avatar struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"uniqueIndex;not null"`
	ImageURL  string         `json:"image_url"`
	Price     int            `json:"price" gorm:"not null;default:0"` // global points
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserAvatar struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_avatar"`
	AvatarID  uint           `json:"avatar_id" gorm:"not null;uniqueIndex:idx_user_avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Avatar Avatar `json:"avatar,omitempty"`
}
