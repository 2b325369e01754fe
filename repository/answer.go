package repository

import (
	"strings"

	"codequiz/models"

	"gorm.io/gorm"
)

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(answer *models.LobbyAnswer) error {
	answer.LobbyCode = strings.ToLower(answer.LobbyCode)
	return r.db.Create(answer).Error
}

func (r *answerRepository) CountCorrectByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.LobbyAnswer{}).
		Where("user_id = ? AND is_correct", userID).
		Count(&count).Error
	return count, err
}
