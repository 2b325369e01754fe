package repository

import (
	"errors"

	"codequiz/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type avatarRepository struct {
	db *gorm.DB
}

func NewAvatarRepository(db *gorm.DB) AvatarRepository {
	return &avatarRepository{db: db}
}

func (r *avatarRepository) All() ([]models.Avatar, error) {
	var avatars []models.Avatar
	err := r.db.Order("price").Find(&avatars).Error
	return avatars, err
}

func (r *avatarRepository) ByID(id uint) (*models.Avatar, error) {
	var avatar models.Avatar
	if err := r.db.First(&avatar, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &avatar, nil
}

func (r *avatarRepository) Owned(userID uint) ([]models.Avatar, error) {
	var avatars []models.Avatar
	err := r.db.
		Joins("JOIN user_avatars ON user_avatars.avatar_id = avatars.id").
		Where("user_avatars.user_id = ? AND user_avatars.deleted_at IS NULL", userID).
		Find(&avatars).Error
	return avatars, err
}

func (r *avatarRepository) Purchase(userID, avatarID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var avatar models.Avatar
		if err := tx.First(&avatar, avatarID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		ownership := models.UserAvatar{UserID: userID, AvatarID: avatarID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ownership)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDuplicate
		}

		// Conditional deduction; rolls the ownership row back when the
		// balance cannot cover the price.
		deduct := tx.Model(&models.User{}).
			Where("id = ? AND points >= ?", userID, avatar.Price).
			Update("points", gorm.Expr("points - ?", avatar.Price))
		if deduct.Error != nil {
			return deduct.Error
		}
		if deduct.RowsAffected == 0 {
			return ErrInsufficientPoints
		}

		return nil
	})
}
