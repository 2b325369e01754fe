package routes

import (
	"log"
	"net/http"
	"strings"

	"codequiz/handlers"
	"codequiz/middleware"
	"codequiz/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	lobbyHandler *handlers.LobbyHandler,
	questionHandler *handlers.QuestionHandler,
	achievementHandler *handlers.AchievementHandler,
	avatarHandler *handlers.AvatarHandler,
	hub *services.Hub,
	authService *services.AuthService,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(authService))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Lobby routes
			lobbies := protected.Group("/lobbies")
			{
				lobbies.POST("", lobbyHandler.CreateLobby)
				lobbies.GET("/:code", lobbyHandler.GetLobby)
				lobbies.POST("/:code/join", lobbyHandler.JoinLobby)
				lobbies.POST("/:code/end", lobbyHandler.EndLobby)
				lobbies.POST("/:code/answer", lobbyHandler.SubmitAnswer)
				lobbies.GET("/:code/leaderboard", lobbyHandler.GetLeaderboard)
			}

			// Question routes
			protected.GET("/questions/random", questionHandler.GetRandomQuestion)

			// Achievement routes
			achievements := protected.Group("/achievements")
			{
				achievements.GET("", achievementHandler.GetCatalog)
				achievements.GET("/mine", achievementHandler.GetMine)
			}

			// Avatar routes
			avatars := protected.Group("/avatars")
			{
				avatars.GET("", avatarHandler.GetCatalog)
				avatars.GET("/mine", avatarHandler.GetMine)
				avatars.POST("/:id/purchase", avatarHandler.Purchase)
			}
		}
	}

	// WebSocket endpoint for real-time lobby communication. The handshake
	// token is validated before the upgrade; no lobby events are processed
	// for an unauthenticated connection.
	router.GET("/ws", func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			header := c.GetHeader("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
			if token == header {
				token = ""
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
			return
		}

		userID, username, err := authService.ValidateToken(token)
		if err != nil {
			log.Printf("WebSocket handshake rejected: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %d: %v", userID, err)
			return
		}

		log.Printf("WebSocket connection established for user %d (%s)", userID, username)

		// Registration hands the connection to the hub; joins, chat and
		// broadcasts flow from there.
		hub.RegisterClient(conn, userID, username)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
