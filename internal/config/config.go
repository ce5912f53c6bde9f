package config

import (
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	Port     string
	Name     string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host string
	Port string
}

type JWTConfig struct {
	Secret string
}

// GameConfig carries the table clock. Phase windows are absolute
// wall-clock durations; the deadline of the current phase is persisted
// on the table row.
type GameConfig struct {
	BettingWindow  time.Duration
	DealingWindow  time.Duration
	ResultWindow   time.Duration
	MaxCatchUpSteps int // bound on phase replays per synchronize call
}

// CycleLength returns the duration of one full betting/dealing/result cycle
func (g GameConfig) CycleLength() time.Duration {
	return g.BettingWindow + g.DealingWindow + g.ResultWindow
}

// Config holds all configuration for the baccarat service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Game     GameConfig
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     getEnv("BACCARAT_SERVER_PORT", "8080"),
			Name:     "baccarat-table",
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "casino_user"),
			Password: getEnv("DB_PASSWORD", "casino_pass"),
			Name:     getEnv("DB_NAME", "casino_db"),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "dev-secret"),
		},
		Game: GameConfig{
			BettingWindow:   getEnvDuration("BACCARAT_BETTING_WINDOW", 15*time.Second),
			DealingWindow:   getEnvDuration("BACCARAT_DEALING_WINDOW", 5*time.Second),
			ResultWindow:    getEnvDuration("BACCARAT_RESULT_WINDOW", 9*time.Second),
			MaxCatchUpSteps: getEnvInt("BACCARAT_MAX_CATCHUP_STEPS", 30),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
