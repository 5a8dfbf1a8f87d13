// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Reply ordering modes for the chat assistant.
const (
	// OrderingFIFO appends replies in submission order.
	OrderingFIFO = "fifo"
	// OrderingIndependent schedules each reply on its own timer.
	OrderingIndependent = "independent"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	GRPCPort       string // empty disables the gRPC server
	FrontendURL    string
	AppEnv         string
	LogLevel       string
	DBPath         string
	ResponderAddr  string // empty uses the in-process rule table
	MetricsEnabled bool

	Chat            ChatConfig
	RateLimit       RateLimitConfig
	SSE             SSEConfig
	ConversationLog ConversationLogConfig
}

// ChatConfig controls the chat assistant.
type ChatConfig struct {
	ReplyDelay       time.Duration
	ReplyJitter      time.Duration
	ReplyOrdering    string
	SessionTTL       time.Duration
	SweepInterval    time.Duration
	MaxMessageLength int
}

// RateLimitConfig controls the per-visitor token bucket on chat writes.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// SSEConfig controls the chat event stream.
type SSEConfig struct {
	KeepaliveInterval  time.Duration
	RetryDelay         time.Duration
	ReplayBuffer       int
	MaxRequestBodySize int64
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	Compress      bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GRPCPort:       getEnv("GRPC_PORT", ""),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		AppEnv:         getEnv("APP_ENV", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DBPath:         getEnv("DB_PATH", "./data/varunnetra.db"),
		ResponderAddr:  getEnv("RESPONDER_ADDR", ""),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		Chat: ChatConfig{
			ReplyDelay:       getEnvDuration("CHAT_REPLY_DELAY", 1500*time.Millisecond),
			ReplyJitter:      getEnvDuration("CHAT_REPLY_JITTER", 0),
			ReplyOrdering:    strings.ToLower(getEnv("CHAT_REPLY_ORDERING", OrderingFIFO)),
			SessionTTL:       getEnvDuration("CHAT_SESSION_TTL", 60*time.Minute),
			SweepInterval:    getEnvDuration("CHAT_SWEEP_INTERVAL", 5*time.Minute),
			MaxMessageLength: getEnvInt("CHAT_MAX_MESSAGE_LENGTH", 2000),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 10),
		},
		SSE: SSEConfig{
			KeepaliveInterval:  getEnvDuration("SSE_KEEPALIVE_INTERVAL", 10*time.Second),
			RetryDelay:         getEnvDuration("SSE_RETRY_DELAY", 5*time.Second),
			ReplayBuffer:       getEnvInt("SSE_REPLAY_BUFFER", 100),
			MaxRequestBodySize: 1 << 20,
		},
		ConversationLog: ConversationLogConfig{
			Enabled:       getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Dir:           getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CONVERSATION_LOG_GLOBAL_PATH", "./data/logs/conversations/all.ndjson"),
			QueueSize:     queueSize,
			MaxSizeMB:     getEnvInt("CONVERSATION_LOG_MAX_SIZE_MB", 100),
			MaxBackups:    getEnvInt("CONVERSATION_LOG_MAX_BACKUPS", 5),
			MaxAgeDays:    getEnvInt("CONVERSATION_LOG_MAX_AGE_DAYS", 30),
			Compress:      getEnvBool("CONVERSATION_LOG_COMPRESS", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
//
//nolint:gocyclo // One flat list of field checks.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Chat.ReplyOrdering != OrderingFIFO && c.Chat.ReplyOrdering != OrderingIndependent {
		return fmt.Errorf("CHAT_REPLY_ORDERING must be %q or %q, got %q", OrderingFIFO, OrderingIndependent, c.Chat.ReplyOrdering)
	}
	if c.Chat.ReplyDelay < 0 || c.Chat.ReplyJitter < 0 {
		return fmt.Errorf("CHAT_REPLY_DELAY and CHAT_REPLY_JITTER must be >= 0")
	}
	if c.Chat.SessionTTL <= 0 {
		return fmt.Errorf("CHAT_SESSION_TTL must be > 0")
	}
	if c.Chat.SweepInterval <= 0 {
		return fmt.Errorf("CHAT_SWEEP_INTERVAL must be > 0")
	}
	if c.Chat.MaxMessageLength <= 0 {
		return fmt.Errorf("CHAT_MAX_MESSAGE_LENGTH must be > 0")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}
	if c.SSE.KeepaliveInterval <= 0 || c.SSE.RetryDelay <= 0 {
		return fmt.Errorf("SSE_KEEPALIVE_INTERVAL and SSE_RETRY_DELAY must be > 0")
	}
	if c.SSE.ReplayBuffer <= 0 {
		return fmt.Errorf("SSE_REPLAY_BUFFER must be > 0")
	}
	if c.ConversationLog.Dir == "" {
		return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.GlobalPath == "" {
		return fmt.Errorf("CONVERSATION_LOG_GLOBAL_PATH cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	if c.AppEnv != "" {
		return c.AppEnv == "development"
	}
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// SlogLevel maps LOG_LEVEL onto a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// getEnvDuration accepts Go durations ("1.5s") or bare milliseconds ("1500").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
