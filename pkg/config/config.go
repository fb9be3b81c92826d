package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port string

	// Postgres connection pieces, assembled into a DSN by config/database.
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	// HMAC secret the auth provider signs session tokens with.
	JWTSecret string

	// Optional Redis address for the title-resolution cache. Empty disables it.
	RedisAddr     string
	RedisPassword string

	AllowedOrigins []string

	Debug bool
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBUser:        strings.TrimSpace(os.Getenv("DB_USER")),
		DBPass:        strings.TrimSpace(os.Getenv("DB_PASSWORD")),
		DBHost:        strings.TrimSpace(os.Getenv("DB_HOST")),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBName:        strings.TrimSpace(os.Getenv("DB_NAME")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Debug:         getEnv("DEBUG", "") == "true",
	}

	origins := getEnv("ALLOWED_ORIGINS", "*")
	if origins == "*" {
		cfg.AllowedOrigins = []string{"*"}
	} else {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
