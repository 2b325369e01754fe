package services

import (
	"strings"

	"codequiz/events"
	"codequiz/models"
	"codequiz/repository"
)

// ChatService persists lobby chat and serves the replay history. It never
// mutates past messages.
type ChatService struct {
	messages repository.MessageRepository
}

func NewChatService(messages repository.MessageRepository) *ChatService {
	return &ChatService{messages: messages}
}

// History returns the most recent messages for a lobby, oldest first.
func (s *ChatService) History(lobbyID string) ([]events.ChatMessage, error) {
	stored, err := s.messages.RecentByLobby(lobbyID, historyLimit)
	if err != nil {
		return nil, err
	}

	history := make([]events.ChatMessage, 0, len(stored))
	for _, m := range stored {
		history = append(history, events.ChatMessage{
			ID:        m.ID,
			LobbyID:   m.LobbyCode,
			Text:      m.Text,
			User:      events.User{ID: m.UserID, Username: m.User.Username},
			CreatedAt: m.CreatedAt,
		})
	}
	return history, nil
}

// Save persists a message with a server-assigned timestamp and returns the
// broadcastable form.
func (s *ChatService) Save(lobbyID string, userID uint, username, text string) (*events.ChatMessage, error) {
	message := models.LobbyMessage{
		LobbyCode: strings.ToLower(lobbyID),
		UserID:    userID,
		Text:      text,
	}
	if err := s.messages.Create(&message); err != nil {
		return nil, err
	}

	return &events.ChatMessage{
		ID:        message.ID,
		LobbyID:   message.LobbyCode,
		Text:      message.Text,
		User:      events.User{ID: userID, Username: username},
		CreatedAt: message.CreatedAt,
	}, nil
}
