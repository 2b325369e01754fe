package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codequiz/events"
	"codequiz/models"
)

func newTestHub(t *testing.T) (*Hub, *memMessages) {
	t.Helper()
	messages := newMemMessages()
	hub := NewHub(NewChatService(messages), nil)
	go hub.Run()
	return hub, messages
}

func newTestClient(hub *Hub, userID uint, username string) *Client {
	client := &Client{
		hub:      hub,
		id:       username,
		send:     make(chan []byte, 256),
		userID:   userID,
		username: username,
	}
	hub.register <- client
	return client
}

func sendInbound(hub *Hub, client *Client, event events.Inbound) {
	hub.inbound <- clientEvent{client: client, event: event}
}

func join(hub *Hub, client *Client, lobbyID string) {
	sendInbound(hub, client, events.Inbound{Type: events.TypeJoinLobby, LobbyID: lobbyID})
}

// recvEvent waits for the next event on the client's send channel and
// requires it to have the given type, returning the raw payload.
func recvEvent(t *testing.T, client *Client, wantType string) json.RawMessage {
	t.Helper()
	select {
	case data, ok := <-client.send:
		require.True(t, ok, "send channel closed while waiting for %s", wantType)
		var envelope events.Envelope
		require.NoError(t, json.Unmarshal(data, &envelope))
		require.Equal(t, wantType, envelope.Type)
		return envelope.Payload
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s event", wantType)
		return nil
	}
}

func assertNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case data := <-client.send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func decodePayload[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload
}

func TestJoinEmptyLobbyReceivesEmptyHistory(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")

	join(hub, alice, "42")

	history := decodePayload[events.ChatHistory](t, recvEvent(t, alice, events.TypeChatHistory))
	assert.Equal(t, "42", history.LobbyID)
	assert.Empty(t, history.Messages)
}

func TestJoinReplaysRecentHistoryOldestFirst(t *testing.T) {
	hub, messages := newTestHub(t)
	for i := 0; i < 25; i++ {
		err := messages.Create(&models.LobbyMessage{LobbyCode: "42", UserID: 1, Text: "m"})
		require.NoError(t, err)
	}

	alice := newTestClient(hub, 1, "alice")
	join(hub, alice, "42")

	history := decodePayload[events.ChatHistory](t, recvEvent(t, alice, events.TypeChatHistory))
	require.Len(t, history.Messages, historyLimit)
	assert.Equal(t, uint(6), history.Messages[0].ID)
	assert.Equal(t, uint(25), history.Messages[len(history.Messages)-1].ID)
}

func TestJoinNotifiesExistingMembersOnly(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)

	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)

	system := decodePayload[events.System](t, recvEvent(t, alice, events.TypeSystem))
	assert.Equal(t, events.SystemJoin, system.Type)
	assert.Equal(t, uint(2), system.UserID)
	assert.Equal(t, "bob", system.Username)

	// The joiner never sees a system event about its own join.
	assertNoEvent(t, bob)
}

func TestLeaveNotifiesRemainingMembers(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	recvEvent(t, alice, events.TypeSystem)

	sendInbound(hub, bob, events.Inbound{Type: events.TypeLeaveLobby})

	system := decodePayload[events.System](t, recvEvent(t, alice, events.TypeSystem))
	assert.Equal(t, events.SystemLeave, system.Type)
	assert.Equal(t, uint(2), system.UserID)

	require.Eventually(t, func() bool {
		members := hub.MembersOf("42")
		return len(members) == 1 && members[0] == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDisconnectRunsSameRemovalPathAsLeave(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	recvEvent(t, alice, events.TypeSystem)

	hub.unregister <- bob

	system := decodePayload[events.System](t, recvEvent(t, alice, events.TypeSystem))
	assert.Equal(t, events.SystemLeave, system.Type)

	require.Eventually(t, func() bool {
		return len(hub.MembersOf("42")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLastMemberLeavingEmptiesRoom(t *testing.T) {
	hub, _ := newTestHub(t)
	bob := newTestClient(hub, 2, "bob")

	join(hub, bob, "7")
	recvEvent(t, bob, events.TypeChatHistory)

	sendInbound(hub, bob, events.Inbound{Type: events.TypeLeaveLobby})

	require.Eventually(t, func() bool {
		return len(hub.MembersOf("7")) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Broadcasts to the emptied room are silent no-ops.
	hub.BroadcastScores("7", 2, 10, 10)
	assertNoEvent(t, bob)
}

func TestChatBroadcastReachesAllMembersInOrder(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	recvEvent(t, alice, events.TypeSystem)

	sendInbound(hub, alice, events.Inbound{Type: events.TypeChatMessage, LobbyID: "42", Text: "hello"})
	sendInbound(hub, alice, events.Inbound{Type: events.TypeChatMessage, LobbyID: "42", Text: "world"})

	for _, client := range []*Client{alice, bob} {
		first := decodePayload[events.ChatMessage](t, recvEvent(t, client, events.TypeChatMessage))
		second := decodePayload[events.ChatMessage](t, recvEvent(t, client, events.TypeChatMessage))
		assert.Equal(t, "hello", first.Text)
		assert.Equal(t, "world", second.Text)
		assert.Equal(t, uint(1), first.User.ID)
		assert.Equal(t, "alice", first.User.Username)
		assert.Less(t, first.ID, second.ID)
	}
}

func TestEmptyChatMessageRejectedToSenderOnly(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	recvEvent(t, alice, events.TypeSystem)

	sendInbound(hub, alice, events.Inbound{Type: events.TypeChatMessage, LobbyID: "42", Text: "   "})

	recvEvent(t, alice, events.TypeError)
	assertNoEvent(t, bob)
}

func TestChatPersistenceFailureSuppressesBroadcast(t *testing.T) {
	hub, messages := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	recvEvent(t, alice, events.TypeSystem)

	messages.mu.Lock()
	messages.createErr = errPersistence
	messages.mu.Unlock()

	sendInbound(hub, alice, events.Inbound{Type: events.TypeChatMessage, LobbyID: "42", Text: "lost"})

	recvEvent(t, alice, events.TypeError)
	assertNoEvent(t, bob)
}

func TestChatRequiresJoiningFirst(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")

	sendInbound(hub, alice, events.Inbound{Type: events.TypeChatMessage, LobbyID: "42", Text: "hello"})

	recvEvent(t, alice, events.TypeError)
}

func TestSameLobbyRejoinReplaysHistoryWithoutNotifying(t *testing.T) {
	hub, messages := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	recvEvent(t, alice, events.TypeSystem)

	require.NoError(t, messages.Create(&models.LobbyMessage{LobbyCode: "42", UserID: 1, Text: "missed this"}))

	// Asking for the current lobby again acts as a resync.
	join(hub, alice, "42")

	history := decodePayload[events.ChatHistory](t, recvEvent(t, alice, events.TypeChatHistory))
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "missed this", history.Messages[0].Text)

	// No membership churn, no system noise for the room.
	assertNoEvent(t, bob)
	assert.ElementsMatch(t, []uint{1, 2}, hub.MembersOf("42"))
}

func TestRejoinReplacesPriorHandle(t *testing.T) {
	hub, _ := newTestHub(t)
	first := newTestClient(hub, 1, "alice")

	join(hub, first, "42")
	recvEvent(t, first, events.TypeChatHistory)

	second := newTestClient(hub, 1, "alice")
	join(hub, second, "42")
	recvEvent(t, second, events.TypeChatHistory)

	require.Eventually(t, func() bool {
		members := hub.MembersOf("42")
		return len(members) == 1 && members[0] == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The replaced handle is closed and stops receiving broadcasts.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-first.send:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastScores("42", 1, 10, 10)
	recvEvent(t, second, events.TypeScores)
}

func TestMembersOfTracksJoinsAndLeaves(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")
	carol := newTestClient(hub, 3, "carol")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	join(hub, carol, "9")
	recvEvent(t, carol, events.TypeChatHistory)

	require.Eventually(t, func() bool {
		return len(hub.MembersOf("42")) == 2 && len(hub.MembersOf("9")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []uint{1, 2}, hub.MembersOf("42"))

	sendInbound(hub, alice, events.Inbound{Type: events.TypeLeaveLobby})
	require.Eventually(t, func() bool {
		members := hub.MembersOf("42")
		return len(members) == 1 && members[0] == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Nil(t, hub.MembersOf("unknown"))
}

func TestBroadcastScoresReachesWholeRoom(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")
	bob := newTestClient(hub, 2, "bob")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)
	join(hub, bob, "42")
	recvEvent(t, bob, events.TypeChatHistory)
	recvEvent(t, alice, events.TypeSystem)

	hub.BroadcastScores("42", 1, 30, 55)

	for _, client := range []*Client{alice, bob} {
		scores := decodePayload[events.Scores](t, recvEvent(t, client, events.TypeScores))
		assert.Equal(t, uint(1), scores.UserID)
		assert.Equal(t, 30, scores.UserScore)
		assert.Equal(t, 55, scores.SessionScore)
	}
}

func TestIncorrectAnswerCounterIsMonotonic(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)

	hub.BroadcastIncorrectAnswer("42", 1, 0, 0, "const", "Incorrect answer")
	first := decodePayload[events.IncorrectAnswer](t, recvEvent(t, alice, events.TypeIncorrectAnswer))
	assert.Equal(t, 1, first.IncorrectAnswers)
	assert.Equal(t, "const", first.CorrectAnswer)

	hub.BroadcastIncorrectAnswer("42", 1, 0, 0, "const", "Incorrect answer")
	second := decodePayload[events.IncorrectAnswer](t, recvEvent(t, alice, events.TypeIncorrectAnswer))
	assert.Equal(t, 2, second.IncorrectAnswers)
}

func TestBroadcastAchievementsCarriesCatalogFields(t *testing.T) {
	hub, _ := newTestHub(t)
	alice := newTestClient(hub, 1, "alice")

	join(hub, alice, "42")
	recvEvent(t, alice, events.TypeChatHistory)

	hub.BroadcastAchievements("42", 1, []models.Achievement{
		{ID: 3, Key: "first_correct", Title: "First Steps", Description: "desc", Icon: "star", Rarity: "common", Points: 10},
	})

	payload := decodePayload[events.NewAchievements](t, recvEvent(t, alice, events.TypeNewAchievements))
	require.Len(t, payload.Achievements, 1)
	assert.Equal(t, uint(1), payload.UserID)
	assert.Equal(t, "First Steps", payload.Achievements[0].Title)
	assert.Equal(t, "common", payload.Achievements[0].Rarity)
	assert.Equal(t, 10, payload.Achievements[0].Points)
}
