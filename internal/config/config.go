package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Ai      AIConfig
	Keys    APIKeys
	Session SessionConfig
	Rag     RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type APIKeys struct {
	GoogleGemini string
	IngestTopic  string // topic name for the document ingestion bus
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini" or "ollama"
	EmbeddingDimension int
	OllamaBaseURL      string
	OllamaModel        string
	LLMProvider        string // "gemini" or "ollama"
	LLMModel           string
}

type SessionConfig struct {
	TTL            time.Duration
	ReapInterval   time.Duration
	MemoryCapacity int
}

type RagConfig struct {
	ChunkSize          int
	ChunkOverlap       int
	MinChunkLength     int
	TopK               int
	DefaultThreshold   float64
	Temperature        float64
	MaxOutputTokens    int
	FetchTimeout       time.Duration
	MaxUploadBytes     int64
	SummaryCharBudget  int
	SummaryMaxTokens   int
	EmbedRatePerSecond float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			IngestTopic:  getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:        getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:           getEnv("LLM_MODEL", "gemini-1.5-flash"),
		},
		Session: SessionConfig{
			TTL:            getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			ReapInterval:   getEnvAsDuration("SESSION_REAP_INTERVAL", 60*time.Second),
			MemoryCapacity: getEnvAsInt("SESSION_MEMORY_CAPACITY", 50),
		},
		Rag: RagConfig{
			ChunkSize:          getEnvAsInt("RAG_CHUNK_SIZE", 2000),
			ChunkOverlap:       getEnvAsInt("RAG_CHUNK_OVERLAP", 500),
			MinChunkLength:     getEnvAsInt("RAG_MIN_CHUNK_LENGTH", 50),
			TopK:               getEnvAsInt("RAG_TOP_K", 5),
			DefaultThreshold:   getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.35),
			Temperature:        getEnvAsFloat("RAG_TEMPERATURE", 0.1),
			MaxOutputTokens:    getEnvAsInt("RAG_MAX_OUTPUT_TOKENS", 2048),
			FetchTimeout:       getEnvAsDuration("RAG_FETCH_TIMEOUT", 20*time.Second),
			MaxUploadBytes:     int64(getEnvAsInt("RAG_MAX_UPLOAD_BYTES", 10*1024*1024)),
			SummaryCharBudget:  getEnvAsInt("RAG_SUMMARY_CHAR_BUDGET", 12000),
			SummaryMaxTokens:   getEnvAsInt("RAG_SUMMARY_MAX_TOKENS", 512),
			EmbedRatePerSecond: getEnvAsFloat("RAG_EMBED_RATE_PER_SECOND", 5),
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
