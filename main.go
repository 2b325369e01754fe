package main

import (
	"log"

	"codequiz/config"
	"codequiz/handlers"
	"codequiz/middleware"
	"codequiz/models"
	"codequiz/repository"
	"codequiz/routes"
	"codequiz/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Lobby{},
		&models.LobbyMember{},
		&models.LobbyMessage{},
		&models.LobbyAnswer{},
		&models.Question{},
		&models.Option{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Avatar{},
		&models.UserAvatar{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Seed catalogs
	if err := config.Seed(db); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	lobbyRepo := repository.NewLobbyRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	avatarRepo := repository.NewAvatarRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	chatService := services.NewChatService(messageRepo)
	achievementService := services.NewAchievementService(achievementRepo, answerRepo, messageRepo, scoreRepo, userRepo)
	lobbyService := services.NewLobbyService(lobbyRepo, scoreRepo, questionRepo, answerRepo, achievementService, redisClient)
	questionService := services.NewQuestionService(questionRepo)
	avatarService := services.NewAvatarService(avatarRepo)

	// Initialize WebSocket hub
	hub := services.NewHub(chatService, achievementService)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	lobbyHandler := handlers.NewLobbyHandler(lobbyService, hub)
	questionHandler := handlers.NewQuestionHandler(questionService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	avatarHandler := handlers.NewAvatarHandler(avatarService)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, lobbyHandler, questionHandler, achievementHandler, avatarHandler, hub, authService)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
