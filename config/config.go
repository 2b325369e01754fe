package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port        string
	BindAddress string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	RedisHost   string
	RedisPort   string
	JWTSecret   string
}

// Load reads configuration from the environment with development defaults.
func Load() *Config {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("BIND_ADDRESS", "localhost")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "codequiz")
	v.SetDefault("DB_PASSWORD", "codequiz123")
	v.SetDefault("DB_NAME", "codequiz")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")

	v.AutomaticEnv()

	return &Config{
		Port:        v.GetString("PORT"),
		BindAddress: v.GetString("BIND_ADDRESS"),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBName:      v.GetString("DB_NAME"),
		RedisHost:   v.GetString("REDIS_HOST"),
		RedisPort:   v.GetString("REDIS_PORT"),
		JWTSecret:   v.GetString("JWT_SECRET"),
	}
}

// gormConfig enables TranslateError so driver errors surface as gorm's
// sentinel errors; the repositories rely on gorm.ErrDuplicatedKey to map
// unique-constraint violations to ErrDuplicate.
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return client
}
