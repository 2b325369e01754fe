package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"codequiz/models"
	"codequiz/repository"
)

// In-memory repository fakes shared by the service tests.

type memUsers struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[uint]*models.User)}
}

func (m *memUsers) Create(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUsers) ByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUsers) ByUsername(username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) AddPoints(userID uint, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Points += delta
	if user.Points < 0 {
		user.Points = 0
	}
	return nil
}

type memLobbies struct {
	mu      sync.Mutex
	lobbies map[string]*models.Lobby
}

func newMemLobbies() *memLobbies {
	return &memLobbies{lobbies: make(map[string]*models.Lobby)}
}

func (m *memLobbies) Create(lobby *models.Lobby) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby.Code = strings.ToLower(lobby.Code)
	copied := *lobby
	m.lobbies[lobby.Code] = &copied
	return nil
}

func (m *memLobbies) ByCode(code string) (*models.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby, ok := m.lobbies[strings.ToLower(code)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *lobby
	return &copied, nil
}

func (m *memLobbies) End(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lobby, ok := m.lobbies[strings.ToLower(code)]
	if !ok || !lobby.Active {
		return repository.ErrNotFound
	}
	lobby.Active = false
	now := time.Now()
	lobby.EndedAt = &now
	return nil
}

type memMessages struct {
	mu        sync.Mutex
	nextID    uint
	messages  []models.LobbyMessage
	createErr error
}

func newMemMessages() *memMessages {
	return &memMessages{}
}

func (m *memMessages) Create(msg *models.LobbyMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memMessages) RecentByLobby(code string, limit int) ([]models.LobbyMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matching []models.LobbyMessage
	for _, msg := range m.messages {
		if msg.LobbyCode == strings.ToLower(code) {
			matching = append(matching, msg)
		}
	}
	if len(matching) > limit {
		matching = matching[len(matching)-limit:]
	}
	return matching, nil
}

func (m *memMessages) CountByUser(userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, msg := range m.messages {
		if msg.UserID == userID {
			count++
		}
	}
	return count, nil
}

type memScores struct {
	mu      sync.Mutex
	nextID  uint
	members map[string]map[uint]*models.LobbyMember
}

func newMemScores() *memScores {
	return &memScores{members: make(map[string]map[uint]*models.LobbyMember)}
}

func (m *memScores) Join(code string, userID uint) (*models.LobbyMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code = strings.ToLower(code)
	if m.members[code] == nil {
		m.members[code] = make(map[uint]*models.LobbyMember)
	}
	if member, ok := m.members[code][userID]; ok {
		copied := *member
		return &copied, nil
	}
	m.nextID++
	member := &models.LobbyMember{
		ID:        m.nextID,
		LobbyCode: code,
		UserID:    userID,
		JoinedAt:  time.Now(),
	}
	m.members[code][userID] = member
	copied := *member
	return &copied, nil
}

func (m *memScores) AddPoints(code string, userID uint, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[strings.ToLower(code)][userID]
	if !ok {
		return repository.ErrNotFound
	}
	member.Score += delta
	if member.Score < 0 {
		member.Score = 0
	}
	return nil
}

func (m *memScores) MemberScore(code string, userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[strings.ToLower(code)][userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return member.Score, nil
}

func (m *memScores) SumByLobby(code string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int
	for _, member := range m.members[strings.ToLower(code)] {
		sum += member.Score
	}
	return sum, nil
}

func (m *memScores) MaxMemberScore(userID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max int
	for _, lobby := range m.members {
		if member, ok := lobby[userID]; ok && member.Score > max {
			max = member.Score
		}
	}
	return max, nil
}

type memQuestions struct {
	mu        sync.Mutex
	questions map[uint]*models.Question
}

func newMemQuestions() *memQuestions {
	return &memQuestions{questions: make(map[uint]*models.Question)}
}

func (m *memQuestions) add(q models.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = &q
}

func (m *memQuestions) ByID(id uint) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *question
	return &copied, nil
}

func (m *memQuestions) Random(category, difficulty string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, question := range m.questions {
		if category != "" && question.Category != category {
			continue
		}
		if difficulty != "" && question.Difficulty != difficulty {
			continue
		}
		copied := *question
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memQuestions) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.questions)), nil
}

type memAnswers struct {
	mu      sync.Mutex
	nextID  uint
	answers []models.LobbyAnswer
}

func newMemAnswers() *memAnswers {
	return &memAnswers{}
}

func (m *memAnswers) Create(answer *models.LobbyAnswer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	answer.ID = m.nextID
	answer.CreatedAt = time.Now()
	m.answers = append(m.answers, *answer)
	return nil
}

func (m *memAnswers) CountCorrectByUser(userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, answer := range m.answers {
		if answer.UserID == userID && answer.IsCorrect {
			count++
		}
	}
	return count, nil
}

type memAchievements struct {
	mu      sync.Mutex
	catalog []models.Achievement
	nextID  uint
	unlocks map[[2]uint]*models.UserAchievement
}

func newMemAchievements(catalog ...models.Achievement) *memAchievements {
	return &memAchievements{catalog: catalog, unlocks: make(map[[2]uint]*models.UserAchievement)}
}

func (m *memAchievements) All() ([]models.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Achievement(nil), m.catalog...), nil
}

func (m *memAchievements) Unlock(userID, achievementID uint, lobbyCode string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint{userID, achievementID}
	if _, ok := m.unlocks[key]; ok {
		return false, nil
	}
	m.nextID++
	m.unlocks[key] = &models.UserAchievement{
		ID:            m.nextID,
		UserID:        userID,
		AchievementID: achievementID,
		LobbyCode:     lobbyCode,
	}
	return true, nil
}

func (m *memAchievements) ForUser(userID uint) ([]models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var unlocks []models.UserAchievement
	for _, unlock := range m.unlocks {
		if unlock.UserID == userID {
			unlocks = append(unlocks, *unlock)
		}
	}
	return unlocks, nil
}

var errPersistence = errors.New("persistence failure")

// recordingBroadcaster captures broadcast calls in emission order.

type broadcastCall struct {
	kind    string
	userID  uint
	payload interface{}
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (r *recordingBroadcaster) BroadcastScores(lobbyID string, userID uint, userScore, sessionScore int) {
	r.record("scores", userID, [2]int{userScore, sessionScore})
}

func (r *recordingBroadcaster) BroadcastCorrectAnswer(lobbyID string, userID uint, message string) {
	r.record("correct", userID, message)
}

func (r *recordingBroadcaster) BroadcastIncorrectAnswer(lobbyID string, userID uint, userScore, sessionScore int, correctAnswer, message string) {
	r.record("incorrect", userID, correctAnswer)
}

func (r *recordingBroadcaster) BroadcastAchievements(lobbyID string, userID uint, achievements []models.Achievement) {
	if len(achievements) == 0 {
		return
	}
	r.record("achievements", userID, achievements)
}

func (r *recordingBroadcaster) record(kind string, userID uint, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, broadcastCall{kind: kind, userID: userID, payload: payload})
}

func (r *recordingBroadcaster) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, len(r.calls))
	for i, call := range r.calls {
		kinds[i] = call.kind
	}
	return kinds
}
