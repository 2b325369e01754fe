package config

import (
	"codequiz/models"

	"gorm.io/gorm"
)

// Seed populates the achievement, avatar and question catalogs when they
// are empty. Safe to run on every startup.
func Seed(db *gorm.DB) error {
	if err := seedAchievements(db); err != nil {
		return err
	}
	if err := seedAvatars(db); err != nil {
		return err
	}
	return seedQuestions(db)
}

func seedAchievements(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	achievements := []models.Achievement{
		{Key: "first_correct", Title: "First Steps", Description: "Answer your first question correctly", Icon: "star", Points: 10, Rarity: "common", Category: "answers"},
		{Key: "quiz_apprentice", Title: "Quiz Apprentice", Description: "Answer 10 questions correctly", Icon: "book", Points: 25, Rarity: "rare", Category: "answers"},
		{Key: "quiz_master", Title: "Quiz Master", Description: "Answer 50 questions correctly", Icon: "crown", Points: 100, Rarity: "epic", Category: "answers"},
		{Key: "century_session", Title: "Century Club", Description: "Reach 100 points in a single lobby", Icon: "trophy", Points: 50, Rarity: "rare", Category: "scores"},
		{Key: "chatterbox", Title: "Chatterbox", Description: "Send your first lobby message", Icon: "chat", Points: 5, Rarity: "common", Category: "social"},
	}
	return db.Create(&achievements).Error
}

func seedAvatars(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Avatar{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	avatars := []models.Avatar{
		{Name: "Rookie Robot", ImageURL: "/avatars/rookie-robot.png", Price: 0},
		{Name: "Code Cat", ImageURL: "/avatars/code-cat.png", Price: 50},
		{Name: "Debug Duck", ImageURL: "/avatars/debug-duck.png", Price: 100},
		{Name: "Terminal Tiger", ImageURL: "/avatars/terminal-tiger.png", Price: 250},
		{Name: "Kernel Knight", ImageURL: "/avatars/kernel-knight.png", Price: 500},
	}
	return db.Create(&avatars).Error
}

func seedQuestions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Question{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	questions := []models.Question{
		{
			Text: "Which keyword declares a constant in JavaScript?", Category: "javascript", Difficulty: "easy",
			Options: []models.Option{
				{Text: "let", Order: 1},
				{Text: "const", IsCorrect: true, Order: 2},
				{Text: "var", Order: 3},
				{Text: "static", Order: 4},
			},
		},
		{
			Text: "What does SQL stand for?", Category: "sql", Difficulty: "easy",
			Options: []models.Option{
				{Text: "Structured Query Language", IsCorrect: true, Order: 1},
				{Text: "Simple Query Language", Order: 2},
				{Text: "Sequential Query Logic", Order: 3},
				{Text: "Standard Question Language", Order: 4},
			},
		},
		{
			Text: "Which Go builtin appends elements to a slice?", Category: "go", Difficulty: "easy",
			Options: []models.Option{
				{Text: "push", Order: 1},
				{Text: "add", Order: 2},
				{Text: "append", IsCorrect: true, Order: 3},
				{Text: "insert", Order: 4},
			},
		},
		{
			Text: "What is the time complexity of binary search?", Category: "algorithms", Difficulty: "medium",
			Options: []models.Option{
				{Text: "O(n)", Order: 1},
				{Text: "O(log n)", IsCorrect: true, Order: 2},
				{Text: "O(n log n)", Order: 3},
				{Text: "O(1)", Order: 4},
			},
		},
		{
			Text: "Which HTTP status code means Too Many Requests?", Category: "web", Difficulty: "medium",
			Options: []models.Option{
				{Text: "409", Order: 1},
				{Text: "418", Order: 2},
				{Text: "429", IsCorrect: true, Order: 3},
				{Text: "503", Order: 4},
			},
		},
	}
	return db.Create(&questions).Error
}
