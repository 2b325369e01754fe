package repository

import (
	"strings"

	"codequiz/models"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *models.LobbyMessage) error {
	msg.LobbyCode = strings.ToLower(msg.LobbyCode)
	return r.db.Create(msg).Error
}

func (r *messageRepository) RecentByLobby(code string, limit int) ([]models.LobbyMessage, error) {
	var messages []models.LobbyMessage
	// Fetch the newest rows first, then flip to oldest-first for replay.
	err := r.db.Where("lobby_code = ?", strings.ToLower(code)).
		Preload("User").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.LobbyMessage{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
