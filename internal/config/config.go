package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Memory   MemoryConfig
	Matching MatchingConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// MemoryConfig controls the conversation memory store.
type MemoryConfig struct {
	Backend string        // "memory" or "redis"
	TTL     time.Duration // session memory horizon
}

// MatchingConfig carries the confidence policy constants and paging clamp.
type MatchingConfig struct {
	HighThreshold   float64
	MediumThreshold float64
	MinMargin       float64
	ClarifyFloor    float64
	MaxCandidates   int
	PageSize        int
}

type AIConfig struct {
	EscalationEnabled bool
	LLMProvider       string // "ollama"
	LLMModel          string
	OllamaBaseURL     string
	EscalationTimeout time.Duration
	RatePerMin        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/copilot.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Memory: MemoryConfig{
			Backend: getEnv("MEMORY_BACKEND", "memory"),
			TTL:     getEnvAsDuration("MEMORY_TTL", 12*time.Hour),
		},
		Matching: MatchingConfig{
			HighThreshold:   getEnvAsFloat("MATCH_HIGH_THRESHOLD", 0.90),
			MediumThreshold: getEnvAsFloat("MATCH_MEDIUM_THRESHOLD", 0.83),
			MinMargin:       getEnvAsFloat("MATCH_MIN_MARGIN", 0.07),
			ClarifyFloor:    getEnvAsFloat("MATCH_CLARIFY_FLOOR", 0.40),
			MaxCandidates:   getEnvAsInt("MATCH_MAX_CANDIDATES", 15),
			PageSize:        getEnvAsInt("ANSWER_PAGE_SIZE", 10),
		},
		Ai: AIConfig{
			EscalationEnabled: getEnv("ESCALATION_ENABLED", "true") == "true",
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EscalationTimeout: getEnvAsDuration("ESCALATION_TIMEOUT", 15*time.Second),
			RatePerMin:        getEnvAsInt("ESCALATION_RATE_PER_MIN", 30),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
