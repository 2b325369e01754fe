package services

import (
	"errors"

	"codequiz/models"
	"codequiz/repository"
)

type AvatarService struct {
	avatars repository.AvatarRepository
}

func NewAvatarService(avatars repository.AvatarRepository) *AvatarService {
	return &AvatarService{avatars: avatars}
}

func (s *AvatarService) Catalog() ([]models.Avatar, error) {
	return s.avatars.All()
}

func (s *AvatarService) Owned(userID uint) ([]models.Avatar, error) {
	return s.avatars.Owned(userID)
}

func (s *AvatarService) Purchase(userID, avatarID uint) (*models.Avatar, error) {
	avatar, err := s.avatars.ByID(avatarID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("avatar not found")
		}
		return nil, err
	}

	if err := s.avatars.Purchase(userID, avatarID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errors.New("avatar already owned")
		case errors.Is(err, repository.ErrInsufficientPoints):
			return nil, errors.New("not enough points")
		default:
			return nil, err
		}
	}

	return avatar, nil
}
