// Package repository gives the service layer explicit data-access
// interfaces. Services never see gorm; the postgres-backed
// implementations live alongside the interfaces and tests substitute
// in-memory fakes.
package repository

import (
	"errors"

	"codequiz/models"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("record already exists")
	ErrInsufficientPoints = errors.New("insufficient points")
)

type UserRepository interface {
	Create(user *models.User) error
	ByID(id uint) (*models.User, error)
	ByUsername(username string) (*models.User, error)
	// AddPoints applies the delta to the user's global points as a single
	// conditional update, never letting the balance drop below zero.
	AddPoints(userID uint, delta int) error
}

type LobbyRepository interface {
	Create(lobby *models.Lobby) error
	ByCode(code string) (*models.Lobby, error)
	End(code string) error
}

type MessageRepository interface {
	Create(msg *models.LobbyMessage) error
	// RecentByLobby returns up to limit most recent messages for the lobby,
	// ordered oldest-to-newest, with the author preloaded.
	RecentByLobby(code string, limit int) ([]models.LobbyMessage, error)
	CountByUser(userID uint) (int64, error)
}

type ScoreRepository interface {
	// Join inserts the membership row if the user is not yet a member.
	Join(code string, userID uint) (*models.LobbyMember, error)
	// AddPoints applies the delta to the member's session score with a
	// floor at zero, in one update statement.
	AddPoints(code string, userID uint, delta int) error
	MemberScore(code string, userID uint) (int, error)
	// SumByLobby recomputes the aggregate session score from the member rows.
	SumByLobby(code string) (int, error)
	MaxMemberScore(userID uint) (int, error)
}

type QuestionRepository interface {
	ByID(id uint) (*models.Question, error)
	Random(category, difficulty string) (*models.Question, error)
	Count() (int64, error)
}

type AnswerRepository interface {
	Create(answer *models.LobbyAnswer) error
	CountCorrectByUser(userID uint) (int64, error)
}

type AchievementRepository interface {
	All() ([]models.Achievement, error)
	// Unlock records the (user, achievement) pair at most once. It reports
	// whether this call created the record.
	Unlock(userID, achievementID uint, lobbyCode string) (bool, error)
	ForUser(userID uint) ([]models.UserAchievement, error)
}

type AvatarRepository interface {
	All() ([]models.Avatar, error)
	ByID(id uint) (*models.Avatar, error)
	Owned(userID uint) ([]models.Avatar, error)
	// Purchase deducts the price from the user's global points and records
	// ownership in one transaction. Fails with ErrDuplicate when already
	// owned and ErrInsufficientPoints when the balance is too low.
	Purchase(userID, avatarID uint) error
}
