// Package events defines the closed set of messages exchanged over a lobby
// websocket. Every payload has a fixed schema; handlers switch on the
// envelope type rather than inspecting dynamic maps.
package events

import (
	"encoding/json"
	"time"
)

// Outbound event types.
const (
	TypeChatHistory     = "chat:history"
	TypeChatMessage     = "chat:message"
	TypeSystem          = "system"
	TypeScores          = "lobby:scores"
	TypeCorrectAnswer   = "lobby:correctAnswer"
	TypeIncorrectAnswer = "lobby:incorrectAnswer"
	TypeNewAchievements = "lobby:newAchievements"
	TypeError           = "error"
)

// Inbound event types.
const (
	TypeJoinLobby  = "joinLobby"
	TypeLeaveLobby = "leaveLobby"
)

// System event subtypes.
const (
	SystemJoin  = "join"
	SystemLeave = "leave"
)

// Envelope wraps every websocket message in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound is the union of fields a client may send. Type selects which
// fields are meaningful.
type Inbound struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobbyId"`
	Text    string `json:"text"`
}

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type ChatMessage struct {
	ID        uint      `json:"id"`
	LobbyID   string    `json:"lobbyId"`
	Text      string    `json:"text"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatHistory struct {
	LobbyID  string        `json:"lobbyId"`
	Messages []ChatMessage `json:"messages"`
}

type System struct {
	Type     string `json:"type"` // join or leave
	LobbyID  string `json:"lobbyId"`
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

type Scores struct {
	UserID       uint `json:"userId"`
	UserScore    int  `json:"userScore"`
	SessionScore int  `json:"sessionScore"`
}

type CorrectAnswer struct {
	UserID  uint   `json:"userId"`
	Message string `json:"message"`
}

type IncorrectAnswer struct {
	UserID           uint   `json:"userId"`
	UserScore        int    `json:"userScore"`
	SessionScore     int    `json:"sessionScore"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
	CorrectAnswer    string `json:"correctAnswer"`
	Message          string `json:"message"`
}

type Achievement struct {
	ID          uint   `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Rarity      string `json:"rarity"`
	Points      int    `json:"points"`
}

type NewAchievements struct {
	UserID       uint          `json:"userId"`
	Achievements []Achievement `json:"achievements"`
}

type Error struct {
	Message string `json:"message"`
}

// Encode marshals a payload into a typed envelope ready for the wire.
func Encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
