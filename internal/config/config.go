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
	AppName               string
	AppEnv                string
	AppPort               string
	DatabaseURL           string
	RedisURL              string
	NATSURL               string
	NATSSubject           string
	JWTSecret             string
	AIProvider            string
	GeminiAPIKey          string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	DefaultModel          string
	DefaultTemplateFile   string
	CodeAttempts          int
	AcceptanceThreshold   int
	SubjectCacheTTL       time.Duration
	SubmitRateLimitMax    int
	SubmitRateLimitWindow time.Duration
	UploadMaxBytes        int64
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
	v.SetEnvPrefix("CORRECTEUR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Correcteur API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "correcteur.answers")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("grading.code_attempts", 10)
	v.SetDefault("grading.acceptance_threshold", 50)
	v.SetDefault("cache.subject_ttl", "10m")
	v.SetDefault("ratelimit.submit_max", 30)
	v.SetDefault("ratelimit.submit_window", "1m")
	v.SetDefault("upload.max_mb", 10)

	ttl, err := parseDuration(v, "cache.subject_ttl", 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid subject cache ttl: %w", err)
	}

	window, err := parseDuration(v, "ratelimit.submit_window", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid submit rate limit window: %w", err)
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		NATSURL:               v.GetString("nats.url"),
		NATSSubject:           v.GetString("nats.subject"),
		JWTSecret:             v.GetString("jwt.secret"),
		AIProvider:            strings.ToLower(v.GetString("ai.provider")),
		GeminiAPIKey:          v.GetString("gemini_api_key"),
		OpenAIAPIKey:          v.GetString("openai_api_key"),
		OpenAIBaseURL:         v.GetString("openai_base_url"),
		DefaultModel:          v.GetString("grading.default_model"),
		DefaultTemplateFile:   v.GetString("grading.default_template_file"),
		CodeAttempts:          v.GetInt("grading.code_attempts"),
		AcceptanceThreshold:   v.GetInt("grading.acceptance_threshold"),
		SubjectCacheTTL:       ttl,
		SubmitRateLimitMax:    v.GetInt("ratelimit.submit_max"),
		SubmitRateLimitWindow: window,
		UploadMaxBytes:        v.GetInt64("upload.max_mb") * 1024 * 1024,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AIProvider != "gemini" && cfg.AIProvider != "openai" {
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = 10
	}

	if cfg.AcceptanceThreshold < 0 || cfg.AcceptanceThreshold > 100 {
		return Config{}, fmt.Errorf("acceptance threshold must be within 0..100, got %d", cfg.AcceptanceThreshold)
	}

	if cfg.SubmitRateLimitMax <= 0 {
		cfg.SubmitRateLimitMax = 30
	}

	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 10 * 1024 * 1024
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	return time.ParseDuration(raw)
}
