package bootstrap

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string
	LogLevel   string
	BodyLimit  string

	Engine            string
	ModelDir          string
	RecognizerOptions string
	GrammarName       string
	GrammarFile       string
	Keyphrase         string
	SilenceDetection  bool

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TranscriptTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		BodyLimit:  getEnv("BODY_LIMIT", "32M"),

		Engine:            getEnv("ENGINE", EngineMemory),
		ModelDir:          getEnv("MODEL_DIR", ""),
		RecognizerOptions: getEnv("RECOGNIZER_OPTIONS", ""),
		GrammarName:       getEnv("GRAMMAR_NAME", "grammar"),
		GrammarFile:       getEnv("GRAMMAR_FILE", ""),
		Keyphrase:         getEnv("KEYPHRASE", ""),
		SilenceDetection:  getEnvBool("SILENCE_DETECTION", true),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		TranscriptTTL: getEnvDuration("TRANSCRIPT_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
