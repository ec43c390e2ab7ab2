// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Reddit      RedditConfig
	Cache       CacheConfig
	Analytics   AnalyticsConfig
	Insight     InsightConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// RedditConfig holds upstream fetch configuration. The rate-limit
// settings are process-wide, shared by every concurrent pipeline run.
type RedditConfig struct {
	BaseURL        string
	PushshiftURL   string
	UserAgent      string
	MaxAttempts    int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
	WindowRequests int
	WindowInterval time.Duration
	SustainedRPS   float64
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// AnalyticsConfig holds pipeline configuration
type AnalyticsConfig struct {
	CommentSearchLimit int
	OverviewLimit      int
	TopPostsLimit      int
	EventsTopic        string
}

// InsightConfig holds text-generation configuration
type InsightConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "threadscope"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Reddit: RedditConfig{
			BaseURL:        getEnv("REDDIT_BASE_URL", "https://www.reddit.com"),
			PushshiftURL:   getEnv("PUSHSHIFT_BASE_URL", "https://api.pushshift.io"),
			UserAgent:      getEnv("REDDIT_USER_AGENT", "threadscope/1.0"),
			MaxAttempts:    getEnvAsInt("REDDIT_MAX_ATTEMPTS", 3),
			AttemptTimeout: getEnvAsDuration("REDDIT_ATTEMPT_TIMEOUT", 10*time.Second),
			BackoffBase:    getEnvAsDuration("REDDIT_BACKOFF_BASE", 1*time.Second),
			WindowRequests: getEnvAsInt("REDDIT_WINDOW_REQUESTS", 10),
			WindowInterval: getEnvAsDuration("REDDIT_WINDOW_INTERVAL", 1*time.Minute),
			SustainedRPS:   getEnvAsFloat("REDDIT_SUSTAINED_RPS", 1.0),
		},
		Cache: CacheConfig{
			TTL:           getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			SweepInterval: getEnvAsDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
		},
		Analytics: AnalyticsConfig{
			CommentSearchLimit: getEnvAsInt("ANALYTICS_COMMENT_SEARCH_LIMIT", 100),
			OverviewLimit:      getEnvAsInt("ANALYTICS_OVERVIEW_LIMIT", 5),
			TopPostsLimit:      getEnvAsInt("ANALYTICS_TOP_POSTS_LIMIT", 5),
			EventsTopic:        getEnv("ANALYTICS_EVENTS_TOPIC", "analytics"),
		},
		Insight: InsightConfig{
			Enabled: getEnvAsBool("INSIGHT_ENABLED", false),
			BaseURL: getEnv("INSIGHT_BASE_URL", "https://generativelanguage.googleapis.com"),
			APIKey:  getEnv("INSIGHT_API_KEY", ""),
			Model:   getEnv("INSIGHT_MODEL", "gemini-2.5-flash-lite"),
			Timeout: getEnvAsDuration("INSIGHT_TIMEOUT", 30*time.Second),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Insight.Enabled && config.Insight.APIKey == "" {
		return fmt.Errorf("insight API key must be set when insight is enabled")
	}

	if config.Reddit.WindowRequests <= 0 || config.Reddit.SustainedRPS <= 0 {
		return fmt.Errorf("reddit rate limits must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
