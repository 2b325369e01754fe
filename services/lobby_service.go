package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"codequiz/models"
	"codequiz/repository"

	"github.com/redis/go-redis/v9"
)

const (
	pointsCorrect   = 10
	pointsIncorrect = -5

	leaderboardTTL  = 2 * time.Hour
	leaderboardSize = 10
)

// Broadcaster is the hub surface the lobby service needs after a scoring
// mutation. Failures behind it are silent no-ops; the HTTP response always
// reflects the persisted outcome.
type Broadcaster interface {
	BroadcastScores(lobbyID string, userID uint, userScore, sessionScore int)
	BroadcastCorrectAnswer(lobbyID string, userID uint, message string)
	BroadcastIncorrectAnswer(lobbyID string, userID uint, userScore, sessionScore int, correctAnswer, message string)
	BroadcastAchievements(lobbyID string, userID uint, achievements []models.Achievement)
}

type LobbyService struct {
	lobbies      repository.LobbyRepository
	scores       repository.ScoreRepository
	questions    repository.QuestionRepository
	answers      repository.AnswerRepository
	achievements *AchievementService
	redis        *redis.Client
}

func NewLobbyService(
	lobbies repository.LobbyRepository,
	scores repository.ScoreRepository,
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	achievements *AchievementService,
	redisClient *redis.Client,
) *LobbyService {
	return &LobbyService{
		lobbies:      lobbies,
		scores:       scores,
		questions:    questions,
		answers:      answers,
		achievements: achievements,
		redis:        redisClient,
	}
}

type CreateLobbyRequest struct {
	Name string `json:"name"`
}

type SubmitAnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	OptionID   uint `json:"option_id" binding:"required"`
}

type AnswerResult struct {
	Correct         bool                 `json:"correct"`
	Points          int                  `json:"points"`
	UserScore       int                  `json:"user_score"`
	SessionScore    int                  `json:"session_score"`
	CorrectAnswer   string               `json:"correct_answer,omitempty"`
	NewAchievements []models.Achievement `json:"new_achievements,omitempty"`
}

type LeaderboardEntry struct {
	UserID uint `json:"user_id"`
	Score  int  `json:"score"`
}

func (s *LobbyService) CreateLobby(creatorID uint, req *CreateLobbyRequest) (*models.Lobby, error) {
	lobby := models.Lobby{
		Code:      s.generateCode(),
		Name:      req.Name,
		CreatorID: creatorID,
		Active:    true,
	}
	if err := s.lobbies.Create(&lobby); err != nil {
		return nil, err
	}

	if _, err := s.scores.Join(lobby.Code, creatorID); err != nil {
		return nil, err
	}

	return &lobby, nil
}

func (s *LobbyService) GetLobby(code string) (*models.Lobby, error) {
	lobby, err := s.lobbies.ByCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("lobby not found")
		}
		return nil, err
	}
	return lobby, nil
}

func (s *LobbyService) JoinLobby(code string, userID uint) (*models.LobbyMember, error) {
	lobby, err := s.GetLobby(code)
	if err != nil {
		return nil, err
	}
	if !lobby.Active {
		return nil, fmt.Errorf("lobby %s has ended - cannot join", lobby.Code)
	}

	return s.scores.Join(lobby.Code, userID)
}

// EndLobby deactivates the lobby. Creator only.
func (s *LobbyService) EndLobby(code string, userID uint) error {
	lobby, err := s.GetLobby(code)
	if err != nil {
		return err
	}
	if lobby.CreatorID != userID {
		return errors.New("unauthorized to end this lobby")
	}

	if err := s.lobbies.End(lobby.Code); err != nil {
		return err
	}

	// Drop the volatile leaderboard along with the session.
	if err := s.redis.Del(context.Background(), leaderboardKey(lobby.Code)).Err(); err != nil {
		log.Printf("Error deleting leaderboard for lobby %s: %v", lobby.Code, err)
	}
	return nil
}

// SubmitAnswer is the HTTP-driven scoring mutation. It persists the answer
// and the score delta, then notifies the room in a fixed order: score
// update, outcome, achievements. The broadcasts are independent
// fire-and-forget events; the returned result is authoritative regardless
// of delivery.
func (s *LobbyService) SubmitAnswer(code string, userID uint, req *SubmitAnswerRequest, hub Broadcaster) (*AnswerResult, error) {
	lobby, err := s.GetLobby(code)
	if err != nil {
		return nil, err
	}
	if !lobby.Active {
		return nil, errors.New("lobby is not active")
	}

	question, err := s.questions.ByID(req.QuestionID)
	if err != nil {
		return nil, errors.New("question not found")
	}

	var chosen *models.Option
	var correctText string
	for i := range question.Options {
		if question.Options[i].ID == req.OptionID {
			chosen = &question.Options[i]
		}
		if question.Options[i].IsCorrect {
			correctText = question.Options[i].Text
		}
	}
	if chosen == nil {
		return nil, errors.New("option not found")
	}

	// Membership upsert keeps any prior session score.
	if _, err := s.scores.Join(lobby.Code, userID); err != nil {
		return nil, err
	}

	delta := pointsIncorrect
	if chosen.IsCorrect {
		delta = pointsCorrect
	}

	answer := models.LobbyAnswer{
		LobbyCode:  lobby.Code,
		UserID:     userID,
		QuestionID: question.ID,
		OptionID:   chosen.ID,
		IsCorrect:  chosen.IsCorrect,
		Points:     delta,
	}
	if err := s.answers.Create(&answer); err != nil {
		return nil, err
	}

	// Single conditional update, floored at zero.
	if err := s.scores.AddPoints(lobby.Code, userID, delta); err != nil {
		return nil, err
	}

	userScore, err := s.scores.MemberScore(lobby.Code, userID)
	if err != nil {
		return nil, err
	}

	// The aggregate is recomputed from the member rows on every scoring
	// event rather than cached.
	sessionScore, err := s.scores.SumByLobby(lobby.Code)
	if err != nil {
		return nil, err
	}

	s.updateLeaderboard(lobby.Code, userID, userScore)

	var unlocked []models.Achievement
	if s.achievements != nil {
		unlocked, err = s.achievements.Evaluate(userID, lobby.Code)
		if err != nil {
			log.Printf("Error evaluating achievements for user %d: %v", userID, err)
			unlocked = nil
		}
	}

	if hub != nil {
		hub.BroadcastScores(lobby.Code, userID, userScore, sessionScore)
		if chosen.IsCorrect {
			hub.BroadcastCorrectAnswer(lobby.Code, userID, "Correct answer!")
		} else {
			hub.BroadcastIncorrectAnswer(lobby.Code, userID, userScore, sessionScore, correctText, "Incorrect answer")
		}
		hub.BroadcastAchievements(lobby.Code, userID, unlocked)
	}

	result := &AnswerResult{
		Correct:         chosen.IsCorrect,
		Points:          delta,
		UserScore:       userScore,
		SessionScore:    sessionScore,
		NewAchievements: unlocked,
	}
	if !chosen.IsCorrect {
		result.CorrectAnswer = correctText
	}
	return result, nil
}

// Leaderboard reads the redis sorted set for the lobby; when redis has no
// entries it falls back to the member rows.
func (s *LobbyService) Leaderboard(code string) ([]LeaderboardEntry, error) {
	code = strings.ToLower(code)

	entries, err := s.redis.ZRevRangeWithScores(context.Background(), leaderboardKey(code), 0, leaderboardSize-1).Result()
	if err != nil && err != redis.Nil {
		log.Printf("Redis error reading leaderboard for lobby %s: %v", code, err)
	}
	if len(entries) > 0 {
		leaderboard := make([]LeaderboardEntry, 0, len(entries))
		for _, entry := range entries {
			id, err := strconv.ParseUint(fmt.Sprint(entry.Member), 10, 64)
			if err != nil {
				continue
			}
			leaderboard = append(leaderboard, LeaderboardEntry{UserID: uint(id), Score: int(entry.Score)})
		}
		return leaderboard, nil
	}

	lobby, err := s.GetLobby(code)
	if err != nil {
		return nil, err
	}
	leaderboard := make([]LeaderboardEntry, 0, len(lobby.Members))
	for _, member := range lobby.Members {
		leaderboard = append(leaderboard, LeaderboardEntry{UserID: member.UserID, Score: member.Score})
	}
	sort.Slice(leaderboard, func(i, j int) bool {
		return leaderboard[i].Score > leaderboard[j].Score
	})
	if len(leaderboard) > leaderboardSize {
		leaderboard = leaderboard[:leaderboardSize]
	}
	return leaderboard, nil
}

// updateLeaderboard mirrors the session score into redis. Redis loss is
// non-fatal; the database remains authoritative.
func (s *LobbyService) updateLeaderboard(code string, userID uint, score int) {
	ctx := context.Background()
	key := leaderboardKey(code)

	if err := s.redis.ZAdd(ctx, key, redis.Z{
		Score:  float64(score),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err(); err != nil {
		log.Printf("Error updating leaderboard for lobby %s: %v", code, err)
		return
	}
	if err := s.redis.Expire(ctx, key, leaderboardTTL).Err(); err != nil {
		log.Printf("Error refreshing leaderboard TTL for lobby %s: %v", code, err)
	}
}

func leaderboardKey(code string) string {
	return "lobby:scores:" + strings.ToLower(code)
}

func (s *LobbyService) generateCode() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:6]
}
