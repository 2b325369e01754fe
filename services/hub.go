package services

import (
	"encoding/json"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"codequiz/events"
	"codequiz/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// How many chat messages are replayed to a joining connection.
	historyLimit = 20
)

// Hub tracks which live connections belong to which lobby and fans events
// out to them. Membership is volatile: the database remains the
// authoritative record of who is in a game.
type Hub struct {
	clients map[*Client]bool

	// rooms holds the connected members per lobby code plus the lobby's
	// in-memory counters, so their lifecycle ends with the room entry.
	rooms map[string]*lobbyState
	mutex sync.RWMutex

	register   chan *Client
	unregister chan *Client
	inbound    chan clientEvent

	chatService        *ChatService
	achievementService *AchievementService
}

type lobbyState struct {
	members          map[uint]*Client
	incorrectAnswers int
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	userID   uint
	username string

	// lobbyID is the lobby this connection currently belongs to, empty
	// before the first join. Touched only by the hub loop.
	lobbyID string

	closeOnce sync.Once
}

type clientEvent struct {
	client *Client
	event  events.Inbound
}

func NewHub(chatService *ChatService, achievementService *AchievementService) *Hub {
	return &Hub{
		clients:            make(map[*Client]bool),
		rooms:              make(map[string]*lobbyState),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		inbound:            make(chan clientEvent, 256),
		chatService:        chatService,
		achievementService: achievementService,
	}
}

// Run processes registrations and inbound events on a single loop. Chat is
// handled inline, so persist-then-broadcast stays sequential and every
// member sees lobby messages in the order they were stored.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client registered: %s (user %d: %s) - Total clients: %d", client.id, client.userID, client.username, h.clientCount())

		case client := <-h.unregister:
			h.disconnectClient(client)

		case ev := <-h.inbound:
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev clientEvent) {
	// A handler failure must never take down the shared loop.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic handling %s for user %d: %v\n%s", ev.event.Type, ev.client.userID, r, debug.Stack())
		}
	}()

	switch ev.event.Type {
	case events.TypeJoinLobby:
		h.handleJoin(ev.client, strings.ToLower(ev.event.LobbyID))
	case events.TypeLeaveLobby:
		h.handleLeave(ev.client)
	case events.TypeChatMessage:
		h.handleChat(ev.client, strings.ToLower(ev.event.LobbyID), ev.event.Text)
	default:
		log.Printf("Unknown message type: %s from user %d (%s)", ev.event.Type, ev.client.userID, ev.client.username)
	}
}

// handleJoin registers the connection under the lobby. Any identifier is
// accepted; whether the lobby corresponds to a live game session is a
// database concern. A rejoin replaces the user's prior handle without a
// leave broadcast.
func (h *Hub) handleJoin(client *Client, lobbyID string) {
	if lobbyID == "" {
		client.sendEvent(events.TypeError, events.Error{Message: "lobbyId is required"})
		return
	}

	// Re-requesting the current lobby is a resync: replay the history
	// without disturbing membership or notifying the room.
	if client.lobbyID == lobbyID {
		h.sendHistory(client, lobbyID)
		return
	}
	if client.lobbyID != "" {
		h.handleLeave(client)
	}

	h.mutex.Lock()
	room, ok := h.rooms[lobbyID]
	if !ok {
		room = &lobbyState{members: make(map[uint]*Client)}
		h.rooms[lobbyID] = room
	}
	if prior, ok := room.members[client.userID]; ok && prior != client {
		log.Printf("Replacing connection for user %d in lobby %s", client.userID, lobbyID)
		prior.lobbyID = ""
		prior.close()
		delete(h.clients, prior)
	}
	room.members[client.userID] = client
	client.lobbyID = lobbyID
	h.mutex.Unlock()

	log.Printf("User %d (%s) joined lobby %s", client.userID, client.username, lobbyID)

	h.broadcastToLobby(lobbyID, events.TypeSystem, events.System{
		Type:     events.SystemJoin,
		LobbyID:  lobbyID,
		UserID:   client.userID,
		Username: client.username,
	}, client)

	// History goes to the joining connection only.
	h.sendHistory(client, lobbyID)
}

func (h *Hub) sendHistory(client *Client, lobbyID string) {
	history, err := h.chatService.History(lobbyID)
	if err != nil {
		log.Printf("Error loading chat history for lobby %s: %v", lobbyID, err)
		client.sendEvent(events.TypeError, events.Error{Message: "failed to load chat history"})
		return
	}
	client.sendEvent(events.TypeChatHistory, events.ChatHistory{LobbyID: lobbyID, Messages: history})
}

func (h *Hub) handleLeave(client *Client) {
	lobbyID := client.lobbyID
	if lobbyID == "" {
		return
	}

	h.mutex.Lock()
	h.removeFromRoom(client)
	h.mutex.Unlock()

	log.Printf("User %d (%s) left lobby %s", client.userID, client.username, lobbyID)

	h.broadcastToLobby(lobbyID, events.TypeSystem, events.System{
		Type:     events.SystemLeave,
		LobbyID:  lobbyID,
		UserID:   client.userID,
		Username: client.username,
	}, client)
}

// disconnectClient runs the same removal path as an explicit leave; a
// dropped connection is terminal for that membership record until the
// client rejoins.
func (h *Hub) disconnectClient(client *Client) {
	h.handleLeave(client)

	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
		log.Printf("Client unregistered: %s (user %d: %s) - Total clients: %d", client.id, client.userID, client.username, len(h.clients))
	}
	h.mutex.Unlock()
}

// handleChat validates, persists, then broadcasts. A persistence failure is
// reported to the sender and suppresses the broadcast entirely.
func (h *Hub) handleChat(client *Client, lobbyID, text string) {
	if lobbyID == "" {
		lobbyID = client.lobbyID
	}
	if lobbyID == "" || client.lobbyID != lobbyID {
		client.sendEvent(events.TypeError, events.Error{Message: "join the lobby before sending messages"})
		return
	}

	if strings.TrimSpace(text) == "" {
		client.sendEvent(events.TypeError, events.Error{Message: "message text must not be empty"})
		return
	}

	message, err := h.chatService.Save(lobbyID, client.userID, client.username, text)
	if err != nil {
		log.Printf("Error persisting chat message for lobby %s: %v", lobbyID, err)
		client.sendEvent(events.TypeError, events.Error{Message: "failed to send message"})
		return
	}

	h.broadcastToLobby(lobbyID, events.TypeChatMessage, *message, nil)

	// Chat-driven achievements (e.g. first message) ride the same path as
	// score-driven ones.
	if h.achievementService != nil {
		unlocked, err := h.achievementService.Evaluate(client.userID, lobbyID)
		if err != nil {
			log.Printf("Error evaluating achievements for user %d: %v", client.userID, err)
		} else if len(unlocked) > 0 {
			h.BroadcastAchievements(lobbyID, client.userID, unlocked)
		}
	}
}

// MembersOf returns the connected user ids for a lobby. Fan-out only; never
// authoritative for who is in the game.
func (h *Hub) MembersOf(lobbyID string) []uint {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	room, ok := h.rooms[strings.ToLower(lobbyID)]
	if !ok {
		return nil
	}
	members := make([]uint, 0, len(room.members))
	for userID := range room.members {
		members = append(members, userID)
	}
	return members
}

// BroadcastScores pushes a score update after an HTTP-driven scoring
// mutation. An empty lobby is a silent no-op.
func (h *Hub) BroadcastScores(lobbyID string, userID uint, userScore, sessionScore int) {
	h.broadcastToLobby(strings.ToLower(lobbyID), events.TypeScores, events.Scores{
		UserID:       userID,
		UserScore:    userScore,
		SessionScore: sessionScore,
	}, nil)
}

func (h *Hub) BroadcastCorrectAnswer(lobbyID string, userID uint, message string) {
	h.broadcastToLobby(strings.ToLower(lobbyID), events.TypeCorrectAnswer, events.CorrectAnswer{
		UserID:  userID,
		Message: message,
	}, nil)
}

// BroadcastIncorrectAnswer bumps the lobby's in-memory incorrect counter
// and reveals the correct answer to the room. The counter lives on the
// room's registry state, so it resets when the room empties out.
func (h *Hub) BroadcastIncorrectAnswer(lobbyID string, userID uint, userScore, sessionScore int, correctAnswer, message string) {
	lobbyID = strings.ToLower(lobbyID)

	h.mutex.Lock()
	room, ok := h.rooms[lobbyID]
	if !ok {
		h.mutex.Unlock()
		return
	}
	room.incorrectAnswers++
	count := room.incorrectAnswers
	h.mutex.Unlock()

	h.broadcastToLobby(lobbyID, events.TypeIncorrectAnswer, events.IncorrectAnswer{
		UserID:           userID,
		UserScore:        userScore,
		SessionScore:     sessionScore,
		IncorrectAnswers: count,
		CorrectAnswer:    correctAnswer,
		Message:          message,
	}, nil)
}

// BroadcastAchievements emits newly unlocked achievements immediately after
// they are persisted.
func (h *Hub) BroadcastAchievements(lobbyID string, userID uint, achievements []models.Achievement) {
	if len(achievements) == 0 {
		return
	}

	payload := events.NewAchievements{UserID: userID}
	for _, a := range achievements {
		payload.Achievements = append(payload.Achievements, events.Achievement{
			ID:          a.ID,
			Key:         a.Key,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Rarity:      a.Rarity,
			Points:      a.Points,
		})
	}

	h.broadcastToLobby(strings.ToLower(lobbyID), events.TypeNewAchievements, payload, nil)
}

// broadcastToLobby delivers an event to every member of the lobby except
// exclude. Delivery is fire-and-forget: a member whose send buffer is full
// is skipped and left for its write pump to clean up.
func (h *Hub) broadcastToLobby(lobbyID, eventType string, payload any, exclude *Client) {
	data, err := events.Encode(eventType, payload)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	h.mutex.RLock()
	room, ok := h.rooms[lobbyID]
	if !ok {
		h.mutex.RUnlock()
		return
	}
	recipients := make([]*Client, 0, len(room.members))
	for _, client := range room.members {
		if client != exclude {
			recipients = append(recipients, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range recipients {
		select {
		case client.send <- data:
		default:
			log.Printf("Client %s (user %d) send buffer full, skipping %s event", client.id, client.userID, eventType)
		}
	}
}

// removeFromRoom must be called with the hub mutex held.
func (h *Hub) removeFromRoom(client *Client) {
	room, ok := h.rooms[client.lobbyID]
	if !ok {
		client.lobbyID = ""
		return
	}
	if current, ok := room.members[client.userID]; ok && current == client {
		delete(room.members, client.userID)
		if len(room.members) == 0 {
			delete(h.rooms, client.lobbyID)
		}
	}
	client.lobbyID = ""
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RegisterClient wires an authenticated websocket connection into the hub
// and starts its pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, userID uint, username string) *Client {
	client := &Client{
		hub:      h,
		id:       uuid.NewString(),
		socket:   conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		username: username,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) sendEvent(eventType string, payload any) {
	data, err := events.Encode(eventType, payload)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Client %s (user %d) send buffer full, dropping %s event", c.id, c.userID, eventType)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var inbound events.Inbound
		if err := json.Unmarshal(message, &inbound); err != nil {
			c.sendEvent(events.TypeError, events.Error{Message: "malformed message"})
			continue
		}

		c.hub.inbound <- clientEvent{client: c, event: inbound}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
