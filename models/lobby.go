package models

import (
	"time"

	"gorm.io/gorm"
)

type Lobby struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Code      string         `json:"code" gorm:"uniqueIndex;not null"`
	Name      string         `json:"name"`
	CreatorID uint           `json:"creator_id" gorm:"not null"`
	Active    bool           `json:"active" gorm:"not null;default:true"`
	EndedAt   *time.Time     `json:"ended_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Creator  User           `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Members  []LobbyMember  `json:"members,omitempty" gorm:"foreignKey:LobbyCode;references:Code"`
	Messages []LobbyMessage `json:"messages,omitempty" gorm:"foreignKey:LobbyCode;references:Code"`
}
