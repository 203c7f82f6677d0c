package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	Ai        AIConfig
	Pipeline  PipelineConfig
	Retry     RetryConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string // empty disables auth on mutating routes
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Email       string
	Password    string
	SenderName  string
	NotifyEmail string // recipient for workflow completion mail, empty disables
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "stub"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "huggingface" or "stub"
	LLMModel          string
}

// PipelineConfig carries every tunable the generation pipeline reads. It is
// built once at startup and handed to components as values; nothing in the
// core reads the environment directly.
type PipelineConfig struct {
	ChunkSize            int
	ChunkOverlap         int
	TopKDefault          int
	SearchKCap           int
	MaxIterations        int
	QualityThreshold     float64
	ComplianceMinWords   int
	MinFeedbackScore     int
	MaxFeedbackScore     int
	PreferredMinFeedback int // feedback floor for the style corpus and retrieval filter
	StyleCacheTTL        time.Duration
	WorkflowTimeout      time.Duration
	ReviewPolicy         string // "always" (current behavior) or "compliance"
	SearchWorkers        int
}

type RetryConfig struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "DocGen"),
			NotifyEmail: getEnv("WORKFLOW_NOTIFY_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "stub"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "stub"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Pipeline: PipelineConfig{
			ChunkSize:            getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:         getEnvAsInt("CHUNK_OVERLAP", 200),
			TopKDefault:          getEnvAsInt("RETRIEVAL_TOP_K", 5),
			SearchKCap:           getEnvAsInt("RETRIEVAL_SEARCH_K_CAP", 20),
			MaxIterations:        getEnvAsInt("MAX_WORKFLOW_ITERATIONS", 3),
			QualityThreshold:     getEnvAsFloat("QUALITY_THRESHOLD", 0.7),
			ComplianceMinWords:   getEnvAsInt("COMPLIANCE_MIN_WORDS", 500),
			MinFeedbackScore:     getEnvAsInt("MIN_FEEDBACK_SCORE", 1),
			MaxFeedbackScore:     getEnvAsInt("MAX_FEEDBACK_SCORE", 5),
			PreferredMinFeedback: getEnvAsInt("PREFERRED_MIN_FEEDBACK", 3),
			StyleCacheTTL:        getEnvAsDuration("STYLE_CACHE_TTL", 5*time.Minute),
			WorkflowTimeout:      getEnvAsDuration("WORKFLOW_TIMEOUT", 5*time.Minute),
			ReviewPolicy:         getEnv("REVIEW_POLICY", "always"),
			SearchWorkers:        getEnvAsInt("SEARCH_WORKERS", 4),
		},
		Retry: RetryConfig{
			MaxAttempts:     uint(getEnvAsInt("RETRY_MAX_ATTEMPTS", 3)),
			InitialInterval: getEnvAsDuration("RETRY_INITIAL_INTERVAL", 4*time.Second),
			MaxInterval:     getEnvAsDuration("RETRY_MAX_INTERVAL", 10*time.Second),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
