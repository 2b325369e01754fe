package services

import (
	"log"

	"codequiz/models"
	"codequiz/repository"
)

// Achievement keys known to the evaluator. The catalog rows are seeded at
// startup; a rule without a catalog row is skipped.
const (
	AchievementFirstCorrect   = "first_correct"
	AchievementTenCorrect     = "quiz_apprentice"
	AchievementFiftyCorrect   = "quiz_master"
	AchievementCenturySession = "century_session"
	AchievementFirstMessage   = "chatterbox"
)

// AchievementService re-derives unlocked achievements from persisted
// counters after a scoring or chat event. Unlocks are idempotent: the
// repository's uniqueness constraint guarantees at most one record per
// (user, achievement), so a concurrent double-evaluate yields one unlock
// and one broadcastable result.
type AchievementService struct {
	achievements repository.AchievementRepository
	answers      repository.AnswerRepository
	messages     repository.MessageRepository
	scores       repository.ScoreRepository
	users        repository.UserRepository
}

func NewAchievementService(
	achievements repository.AchievementRepository,
	answers repository.AnswerRepository,
	messages repository.MessageRepository,
	scores repository.ScoreRepository,
	users repository.UserRepository,
) *AchievementService {
	return &AchievementService{
		achievements: achievements,
		answers:      answers,
		messages:     messages,
		scores:       scores,
		users:        users,
	}
}

// Evaluate checks every rule against the user's current counters and
// returns the achievements newly unlocked by this call.
func (s *AchievementService) Evaluate(userID uint, lobbyCode string) ([]models.Achievement, error) {
	catalog, err := s.achievements.All()
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.Achievement, len(catalog))
	for _, a := range catalog {
		byKey[a.Key] = a
	}

	correct, err := s.answers.CountCorrectByUser(userID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	bestSession, err := s.scores.MaxMemberScore(userID)
	if err != nil {
		return nil, err
	}

	qualified := []string{}
	if correct >= 1 {
		qualified = append(qualified, AchievementFirstCorrect)
	}
	if correct >= 10 {
		qualified = append(qualified, AchievementTenCorrect)
	}
	if correct >= 50 {
		qualified = append(qualified, AchievementFiftyCorrect)
	}
	if bestSession >= 100 {
		qualified = append(qualified, AchievementCenturySession)
	}
	if messages >= 1 {
		qualified = append(qualified, AchievementFirstMessage)
	}

	var unlocked []models.Achievement
	for _, key := range qualified {
		achievement, ok := byKey[key]
		if !ok {
			log.Printf("Achievement %s qualified but missing from catalog", key)
			continue
		}

		created, err := s.achievements.Unlock(userID, achievement.ID, lobbyCode)
		if err != nil {
			return nil, err
		}
		if !created {
			continue
		}

		// Reward points go to the user's global balance.
		if achievement.Points > 0 {
			if err := s.users.AddPoints(userID, achievement.Points); err != nil {
				log.Printf("Error crediting achievement points to user %d: %v", userID, err)
			}
		}
		unlocked = append(unlocked, achievement)
	}

	return unlocked, nil
}

func (s *AchievementService) Catalog() ([]models.Achievement, error) {
	return s.achievements.All()
}

func (s *AchievementService) ForUser(userID uint) ([]models.UserAchievement, error) {
	return s.achievements.ForUser(userID)
}
