package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/gorm"

	"articles-api/internal/models"
	"articles-api/pkg/db"
)

// Config is loaded once at startup and handed to constructors; nothing reads
// the environment after LoadConfig returns.
type Config struct {
	AppAddr string

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	JWT_SECRET      string
	TokenTTLMinutes int

	KAFKA_ADDRESS string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	LogLevel string
}

// 7 days, matching the issued token lifetime the API has always used.
const defaultTokenTTLMinutes = 60 * 24 * 7

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		AppAddr:         getenvDefault("APP_ADDR", ":8080"),
		DB_HOST:         os.Getenv("DB_HOST"),
		DB_PORT:         os.Getenv("DB_PORT"),
		DB_USER:         os.Getenv("DB_USER"),
		DB_PASSWORD:     os.Getenv("DB_PASSWORD"),
		DB_NAME:         os.Getenv("DB_NAME"),
		JWT_SECRET:      os.Getenv("JWT_SECRET"),
		TokenTTLMinutes: defaultTokenTTLMinutes,
		KAFKA_ADDRESS:   os.Getenv("KAFKA_ADDRESS"),
		ES_URL:          os.Getenv("ES_URL"),
		ES_USER:         os.Getenv("ES_USER"),
		ES_PASSWORD:     os.Getenv("ES_PASSWORD"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
	}

	if config.JWT_SECRET == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	if raw := os.Getenv("TOKEN_TTL_MINUTES"); raw != "" {
		ttl, err := strconv.Atoi(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES %q", raw)
		}
		config.TokenTTLMinutes = ttl
	}

	return config, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
}

func InitDB(ctx context.Context, c *Config) (*gorm.DB, error) {
	gdb, err := db.Open(ctx, c.DSN())
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Article{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return gdb, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
