package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Parts     PartsConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	AuditTopic         string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Groq                string
	DigikeyClientID     string
	DigikeyClientSecret string
	Nexar               string
}

type AIConfig struct {
	LLMProvider   string // "groq" or "ollama"
	LLMModel      string // e.g. "llama-3.3-70b-versatile", "llama3"
	OllamaBaseURL string
	GroqBaseURL   string
}

type PartsConfig struct {
	Provider       string // "digikey" or "nexar"
	DigikeyBaseURL string
	NexarBaseURL   string
}

type RateLimitConfig struct {
	ChatPerMinute   int
	PinmapPerMinute int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			AuditTopic:         getEnv("AUDIT_TOPIC_NAME", "AGENT_AUDIT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Groq:                getEnv("GROQ_API_KEY", ""),
			DigikeyClientID:     getEnv("DIGIKEY_CLIENT_ID", ""),
			DigikeyClientSecret: getEnv("DIGIKEY_CLIENT_SECRET", ""),
			Nexar:               getEnv("NEXAR_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "groq"),
			LLMModel:      getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GroqBaseURL:   getEnv("GROQ_BASE_URL", ""),
		},
		Parts: PartsConfig{
			Provider:       getEnv("PARTS_PROVIDER", "digikey"),
			DigikeyBaseURL: getEnv("DIGIKEY_BASE_URL", ""),
			NexarBaseURL:   getEnv("NEXAR_BASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			ChatPerMinute:   getEnvAsInt("RATE_LIMIT_CHAT_PER_MINUTE", 10),
			PinmapPerMinute: getEnvAsInt("RATE_LIMIT_PINMAP_PER_MINUTE", 5),
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
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
