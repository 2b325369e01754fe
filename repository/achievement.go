package repository

import (
	"strings"

	"codequiz/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) All() ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.Order("id").Find(&achievements).Error
	return achievements, err
}

// Unlock relies on the unique (user_id, achievement_id) index: a second
// unlock attempt inserts nothing and reports created=false.
func (r *achievementRepository) Unlock(userID, achievementID uint, lobbyCode string) (bool, error) {
	unlock := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		LobbyCode:     strings.ToLower(lobbyCode),
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&unlock)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *achievementRepository) ForUser(userID uint) ([]models.UserAchievement, error) {
	var unlocks []models.UserAchievement
	err := r.db.Where("user_id = ?", userID).
		Preload("Achievement").
		Order("id").
		Find(&unlocks).Error
	return unlocks, err
}
