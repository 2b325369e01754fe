package models

import (
	"time"

	"gorm.io/gorm"
)

type Achievement struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Key         string         `json:"key" gorm:"uniqueIndex;not null"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Points      int            `json:"points" gorm:"not null;default:0"`
	Rarity      string         `json:"rarity" gorm:"not null;default:'common'"` // common, rare, epic, legendary
	Category    string         `json:"category"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
