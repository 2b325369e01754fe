package repository

import (
	"errors"
	"strings"
	"time"

	"codequiz/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Join(code string, userID uint) (*models.LobbyMember, error) {
	member := models.LobbyMember{
		LobbyCode: strings.ToLower(code),
		UserID:    userID,
		JoinedAt:  time.Now(),
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	if err != nil {
		return nil, err
	}
	// Rejoining an existing membership keeps the prior score.
	var existing models.LobbyMember
	if err := r.db.Where("lobby_code = ? AND user_id = ?", strings.ToLower(code), userID).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// AddPoints mutates the session score in a single conditional update so that
// concurrent submissions cannot lose a delta, and the score never drops
// below zero.
func (r *scoreRepository) AddPoints(code string, userID uint, delta int) error {
	result := r.db.Model(&models.LobbyMember{}).
		Where("lobby_code = ? AND user_id = ?", strings.ToLower(code), userID).
		Update("score", gorm.Expr("GREATEST(score + ?, 0)", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scoreRepository) MemberScore(code string, userID uint) (int, error) {
	var member models.LobbyMember
	err := r.db.Where("lobby_code = ? AND user_id = ?", strings.ToLower(code), userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return member.Score, nil
}

func (r *scoreRepository) SumByLobby(code string) (int, error) {
	var sum int
	err := r.db.Model(&models.LobbyMember{}).
		Where("lobby_code = ?", strings.ToLower(code)).
		Select("COALESCE(SUM(score), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *scoreRepository) MaxMemberScore(userID uint) (int, error) {
	var max int
	err := r.db.Model(&models.LobbyMember{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(score), 0)").
		Scan(&max).Error
	return max, err
}
