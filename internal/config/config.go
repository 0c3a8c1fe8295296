package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Gemini
	GeminiAPIKey          string
	GeminiModel           string
	GeminiTier            string
	GoogleEmbeddingsModel string

	// Knowledge base
	KnowledgeDir  string
	MaxChunkSize  int
	ChunkOverlap  int
	MinChunkSize  int
	RetrievalTopK int
	MinSimilarity float64
	VectorDim     int
	ReindexCron   string // empty disables scheduled rebuilds

	// Conversation
	CorrectionFallback string // "restart" or "reconfirm"
	MaxHistoryTurns    int

	// Rate limiting (enabled only when RedisURL is set)
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RateLimitReqs   int
	RateLimitWindow int

	// Optional Atlas vector search backend
	VectorSearchEnabled bool
	MongoURI            string
	DBName              string
	VectorIndexName     string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:            getEnv("GEMINI_TIER", "free"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		KnowledgeDir:  getEnv("KNOWLEDGE_DIR", "./knowledge_base"),
		MaxChunkSize:  getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 200),
		MinChunkSize:  getEnvInt("MIN_CHUNK_SIZE", 100),
		RetrievalTopK: getEnvInt("RETRIEVAL_TOP_K", 4),
		MinSimilarity: getEnvFloat64("MIN_SIMILARITY", 0),
		VectorDim:     getEnvInt("VECTOR_DIM", 768),
		ReindexCron:   getEnv("REINDEX_CRON", ""),

		CorrectionFallback: getEnv("CONFIRM_CORRECTION_FALLBACK", "restart"),
		MaxHistoryTurns:    getEnvInt("MAX_HISTORY_TURNS", 6),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		VectorSearchEnabled: getEnvBool("MONGODB_VECTOR_ENABLED", false),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017/hmo_chatbot"),
		DBName:              getEnv("DB_NAME", "hmo_chatbot"),
		VectorIndexName:     getEnv("MONGODB_VECTOR_INDEX", "knowledge_chunks_vector"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
