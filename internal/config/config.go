// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port               string
	AllowedOrigins     []string
	DBPath             string
	AlertLedger        bool
	KnowledgeDir       string
	CompanyName        string
	HistoryLimit       int
	SessionIdleTTL     time.Duration // 0 disables eviction
	MaxRequestBodySize int64
	LLM                LLMConfig
	Telegram           TelegramConfig
	ConversationLog    ConversationLogConfig
}

// LLMConfig selects the text-generation provider.
type LLMConfig struct {
	Provider     string
	Model        string
	GroqAPIKey   string
	GroqBaseURL  string
	GoogleAPIKey string
	Timeout      time.Duration
}

// TelegramConfig holds operator notification settings.
type TelegramConfig struct {
	Token   string
	ChatID  string
	APIURL  string
	Timeout time.Duration
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "5000"),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		DBPath:             getEnv("DB_PATH", "./data/leadrelay.db"),
		AlertLedger:        getEnvBool("ALERT_LEDGER_ENABLED", true),
		KnowledgeDir:       getEnv("KNOWLEDGE_DIR", "."),
		CompanyName:        getEnv("COMPANY_NAME", "Lunotech"),
		HistoryLimit:       getEnvInt("HISTORY_LIMIT", 30),
		SessionIdleTTL:     getEnvDuration("SESSION_IDLE_TTL", 0),
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 64<<10)),
		LLM: LLMConfig{
			Provider:     strings.ToLower(getEnv("LLM_PROVIDER", "groq")),
			Model:        getEnv("LLM_MODEL", ""),
			GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
			GroqBaseURL:  getEnv("GROQ_BASE_URL", ""),
			GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
			Timeout:      getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Telegram: TelegramConfig{
			Token:   getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:  getEnv("TELEGRAM_CHAT_ID", ""),
			APIURL:  getEnv("TELEGRAM_API_URL", ""),
			Timeout: getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:   getEnvBool("CONVERSATION_LOG_ENABLED", false),
			Dir:       getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			QueueSize: getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.AlertLedger && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty when the alert ledger is enabled")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be > 0")
	}
	if c.SessionIdleTTL < 0 {
		return fmt.Errorf("SESSION_IDLE_TTL cannot be negative")
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be > 0")
	}
	if c.Telegram.Timeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be > 0")
	}
	switch c.LLM.Provider {
	case "groq", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER must be groq or gemini, got %q", c.LLM.Provider)
	}
	if c.ConversationLog.Enabled {
		if c.ConversationLog.Dir == "" {
			return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
		}
		if c.ConversationLog.QueueSize <= 0 {
			return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
		}
	}
	return nil
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
