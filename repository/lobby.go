package repository

import (
	"errors"
	"strings"
	"time"

	"codequiz/models"

	"gorm.io/gorm"
)

type lobbyRepository struct {
	db *gorm.DB
}

func NewLobbyRepository(db *gorm.DB) LobbyRepository {
	return &lobbyRepository{db: db}
}

func (r *lobbyRepository) Create(lobby *models.Lobby) error {
	lobby.Code = strings.ToLower(lobby.Code)
	return r.db.Create(lobby).Error
}

func (r *lobbyRepository) ByCode(code string) (*models.Lobby, error) {
	var lobby models.Lobby
	err := r.db.Where("code = ?", strings.ToLower(code)).
		Preload("Members").
		Preload("Members.User").
		First(&lobby).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lobby, nil
}

func (r *lobbyRepository) End(code string) error {
	now := time.Now()
	result := r.db.Model(&models.Lobby{}).
		Where("code = ? AND active", strings.ToLower(code)).
		Updates(map[string]interface{}{"active": false, "ended_at": &now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
