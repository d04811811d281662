package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	SessionTTL             time.Duration
	UploadDir              string
	MaxAudioBytes          int64
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	DashboardCacheTTL      time.Duration
	OpenAIAPIKey           string
	TranscriptionModel     string
	ScoringModel           string
	EvaluationTimeout      time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LANGCOACH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LangCoach API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_bytes", 50*1024*1024)
	v.SetDefault("cloudinary.folder", "langcoach/audio")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("transcription.model", "whisper-1")
	v.SetDefault("scoring.model", "gpt-4o-mini")
	v.SetDefault("evaluation.timeout", "2m")

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	evalTimeout, err := time.ParseDuration(v.GetString("evaluation.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid evaluation timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		SessionTTL:             sessionTTL,
		UploadDir:              v.GetString("upload.dir"),
		MaxAudioBytes:          v.GetInt64("upload.max_bytes"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		DashboardCacheTTL:      cacheTTL,
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		TranscriptionModel:     v.GetString("transcription.model"),
		ScoringModel:           v.GetString("scoring.model"),
		EvaluationTimeout:      evalTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = 50 * 1024 * 1024
	}

	return cfg, nil
}
