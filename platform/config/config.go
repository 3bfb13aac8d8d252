// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// BoardConfig provides settings for the external board API client.
type BoardConfig interface {
	GetBoardBaseURL() string
	GetBoardToken() string
	GetBoardSpaceID() string
	GetBoardTimeout() time.Duration
}

// DiscoveryConfig provides settings for the places-search provider.
type DiscoveryConfig interface {
	GetPlacesAPIKey() string
	GetPlacesPageSize() int
	IsDiscoveryEnabled() bool
}

// SMTPConfig provides settings for outbound email delivery.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromEmail() string
	GetSMTPFromName() string
	IsEmailEnabled() bool
}

// IMAPConfig provides settings for the reply mailbox.
type IMAPConfig interface {
	GetIMAPHost() string
	GetIMAPPort() int
	GetIMAPUsername() string
	GetIMAPPassword() string
	IsMailboxEnabled() bool
}

// EmailValidationConfig provides settings for the deliverability validator.
type EmailValidationConfig interface {
	GetEmailValidationBaseURL() string
	GetEmailValidationAPIKey() string
}

// NotifyConfig provides settings for operator notifications.
type NotifyConfig interface {
	GetTelegramBotToken() string
	GetTelegramChatID() string
}

// EngineConfig provides settings for the lead lifecycle engine.
type EngineConfig interface {
	GetQueriesFile() string
	GetSendDelay() time.Duration
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetReconcileCron() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetAPIKey() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string
	APIKey   string

	BoardBaseURL string
	BoardToken   string
	BoardSpaceID string
	BoardTimeout time.Duration

	PlacesAPIKey   string
	PlacesPageSize int

	EmailEnabled  bool
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	SMTPFromName  string

	IMAPHost     string
	IMAPPort     int
	IMAPUsername string
	IMAPPassword string

	EmailValidationBaseURL string
	EmailValidationAPIKey  string

	TelegramBotToken string
	TelegramChatID   string

	QueriesFile string
	SendDelay   time.Duration

	RedisURL         string
	AsynqQueueName   string
	AsynqConcurrency int
	ReconcileCron    string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// BoardConfig implementation
func (c *Config) GetBoardBaseURL() string        { return c.BoardBaseURL }
func (c *Config) GetBoardToken() string          { return c.BoardToken }
func (c *Config) GetBoardSpaceID() string        { return c.BoardSpaceID }
func (c *Config) GetBoardTimeout() time.Duration { return c.BoardTimeout }

// DiscoveryConfig implementation
func (c *Config) GetPlacesAPIKey() string  { return c.PlacesAPIKey }
func (c *Config) GetPlacesPageSize() int   { return c.PlacesPageSize }
func (c *Config) IsDiscoveryEnabled() bool { return c.PlacesAPIKey != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string      { return c.SMTPHost }
func (c *Config) GetSMTPPort() int         { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string  { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string  { return c.SMTPPassword }
func (c *Config) GetSMTPFromEmail() string { return c.SMTPFromEmail }
func (c *Config) GetSMTPFromName() string  { return c.SMTPFromName }
func (c *Config) IsEmailEnabled() bool     { return c.EmailEnabled && c.SMTPHost != "" }

// IMAPConfig implementation
func (c *Config) GetIMAPHost() string     { return c.IMAPHost }
func (c *Config) GetIMAPPort() int        { return c.IMAPPort }
func (c *Config) GetIMAPUsername() string { return c.IMAPUsername }
func (c *Config) GetIMAPPassword() string { return c.IMAPPassword }
func (c *Config) IsMailboxEnabled() bool  { return c.IMAPHost != "" && c.IMAPUsername != "" }

// EmailValidationConfig implementation
func (c *Config) GetEmailValidationBaseURL() string { return c.EmailValidationBaseURL }
func (c *Config) GetEmailValidationAPIKey() string  { return c.EmailValidationAPIKey }

// NotifyConfig implementation
func (c *Config) GetTelegramBotToken() string { return c.TelegramBotToken }
func (c *Config) GetTelegramChatID() string   { return c.TelegramChatID }

// EngineConfig implementation
func (c *Config) GetQueriesFile() string       { return c.QueriesFile }
func (c *Config) GetSendDelay() time.Duration  { return c.SendDelay }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetReconcileCron() string  { return c.ReconcileCron }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetAPIKey() string        { return c.APIKey }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		APIKey:   getEnv("API_KEY", ""),

		BoardBaseURL: getEnv("BOARD_BASE_URL", "https://api.clickup.com/api/v2"),
		BoardToken:   getEnv("BOARD_API_TOKEN", ""),
		BoardSpaceID: getEnv("BOARD_SPACE_ID", ""),
		BoardTimeout: mustDuration(getEnv("BOARD_TIMEOUT", "15s")),

		PlacesAPIKey:   getEnv("GOOGLE_PLACES_API_KEY", ""),
		PlacesPageSize: mustInt(getEnv("PLACES_PAGE_SIZE", "20")),

		EmailEnabled:  emailEnabled,
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM", ""),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "Outreach"),

		IMAPHost:     getEnv("IMAP_HOST", getEnv("SMTP_HOST", "")),
		IMAPPort:     mustInt(getEnv("IMAP_PORT", "993")),
		IMAPUsername: getEnv("IMAP_USERNAME", getEnv("SMTP_USERNAME", "")),
		IMAPPassword: getEnv("IMAP_PASSWORD", getEnv("SMTP_PASSWORD", "")),

		EmailValidationBaseURL: getEnv("EMAIL_VALIDATION_BASE_URL", ""),
		EmailValidationAPIKey:  getEnv("EMAIL_VALIDATION_API_KEY", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		QueriesFile: getEnv("QUERIES_FILE", ""),
		SendDelay:   mustDuration(getEnv("SEND_DELAY", "300ms")),

		RedisURL:         getEnv("REDIS_URL", ""),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "outreach"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "1")),
		ReconcileCron:    getEnv("RECONCILE_CRON", ""),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
	}

	if cfg.BoardToken == "" || cfg.BoardSpaceID == "" {
		return nil, fmt.Errorf("BOARD_API_TOKEN and BOARD_SPACE_ID are required")
	}
	if cfg.EmailEnabled && cfg.SMTPHost != "" && cfg.SMTPFromEmail == "" {
		return nil, fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
