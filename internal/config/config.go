package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
}

type DatabaseConfig struct {
	URI            string
	Name           string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type AuthConfig struct {
	LoginRateLimitPerMinute int
	TimingDelayBaseMs       int
	TimingDelayRandomMs     int
	// Optional bootstrap operator. Password is plaintext here and digested at startup.
	AdminUsername string
	AdminPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	uri := getEnv("MONGODB_URI", "")
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URI:            uri,
			Name:           getEnv("DB_NAME", "citywalk"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
			MaxPoolSize:    uint64(getEnvAsInt("MONGO_MAX_POOL_SIZE", 50)),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(getEnv("ALLOWED_ORIGINS", "*")),
			TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			LoginRateLimitPerMinute: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
			TimingDelayBaseMs:       getEnvAsInt("TIMING_DELAY_BASE_MS", 200),
			TimingDelayRandomMs:     getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
			AdminUsername:           strings.ToLower(strings.TrimSpace(getEnv("ADMIN_USERNAME", ""))),
			AdminPassword:           getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if cfg.Database.MaxPoolSize == 0 {
		return nil, fmt.Errorf("MONGO_MAX_POOL_SIZE must be positive")
	}

	if (cfg.Auth.AdminUsername == "") != (cfg.Auth.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal >= 0 {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

// parseAllowedOrigins splits a comma-separated origin list. "*" allows every origin.
func parseAllowedOrigins(originsStr string) []string {
	return splitList(originsStr)
}

func splitList(raw string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
