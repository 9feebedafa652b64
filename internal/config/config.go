package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	SessionSecret   string
	StaticFilesPath string
	WordsPath       string
	AudioCachePath  string
	MigrationsPath  string
	SpeechEnabled   bool
	// LocalAudio routes cue sounds through the server machine's speakers,
	// for kiosk installs where the server also drives the display
	LocalAudio bool

	// Progress report email (Amazon SES); disabled when FromEmail is empty
	AWSRegion       string
	ReportFromEmail string
	ReportFromName  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./spellstar.db"),
		DatabaseURL:     getEnv("DB_URL", ""),
		SessionDuration: 30 * 24 * time.Hour,
		SessionSecret:   getEnv("SESSION_SECRET", "spellstar-dev-secret"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		WordsPath:       getEnv("WORDS_PATH", "./words"),
		AudioCachePath:  getEnv("AUDIO_CACHE_PATH", "./static/audio"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		SpeechEnabled:   getEnvBool("SPEECH_ENABLED", true),
		LocalAudio:      getEnvBool("LOCAL_AUDIO", false),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ReportFromEmail: getEnv("REPORT_FROM_EMAIL", ""),
		ReportFromName:  getEnv("REPORT_FROM_NAME", "Spellstar"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool reads a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
