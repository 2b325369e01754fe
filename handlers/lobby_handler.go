package handlers

import (
	"net/http"

	"codequiz/services"

	"github.com/gin-gonic/gin"
)

type LobbyHandler struct {
	lobbyService *services.LobbyService
	hub          *services.Hub
}

func NewLobbyHandler(lobbyService *services.LobbyService, hub *services.Hub) *LobbyHandler {
	return &LobbyHandler{
		lobbyService: lobbyService,
		hub:          hub,
	}
}

func (h *LobbyHandler) CreateLobby(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := h.lobbyService.CreateLobby(userID.(uint), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, lobby)
}

func (h *LobbyHandler) GetLobby(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lobby code required"})
		return
	}

	lobby, err := h.lobbyService.GetLobby(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
		return
	}

	c.JSON(http.StatusOK, lobby)
}

func (h *LobbyHandler) JoinLobby(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lobby code required"})
		return
	}

	member, err := h.lobbyService.JoinLobby(code, userID.(uint))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, member)
}

func (h *LobbyHandler) EndLobby(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lobby code required"})
		return
	}

	if err := h.lobbyService.EndLobby(code, userID.(uint)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lobby ended"})
}

// SubmitAnswer applies the scoring mutation, then the service pushes the
// score, outcome and achievement events to the lobby. The JSON response
// reflects the persisted outcome whether or not anyone is connected.
func (h *LobbyHandler) SubmitAnswer(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lobby code required"})
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.lobbyService.SubmitAnswer(code, userID.(uint), &req, h.hub)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LobbyHandler) GetLeaderboard(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Lobby code required"})
		return
	}

	leaderboard, err := h.lobbyService.Leaderboard(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard})
}
