package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Shop backend (server of record)
	BackendURL            string `mapstructure:"BACKEND_URL"`
	BackendTimeoutSeconds int    `mapstructure:"BACKEND_TIMEOUT_SECONDS"`

	// Circuit breaker around the backend
	CBFailureThreshold   int `mapstructure:"CB_FAILURE_THRESHOLD"`
	CBSuccessThreshold   int `mapstructure:"CB_SUCCESS_THRESHOLD"`
	CBOpenTimeoutSeconds int `mapstructure:"CB_OPEN_TIMEOUT_SECONDS"`

	// Redis: terminal state + lookup cache. Empty = in-memory state, no cache.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Local journal of submitted sales/refunds (sqlite file or postgres DSN)
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Business
	LookupCacheTTLSeconds int    `mapstructure:"LOOKUP_CACHE_TTL_SECONDS"`
	TerminalStateTTLHours int    `mapstructure:"TERMINAL_STATE_TTL_HOURS"`
	CajaHistorialDias     int    `mapstructure:"CAJA_HISTORIAL_DIAS"`
	CurrencySymbol        string `mapstructure:"CURRENCY_SYMBOL"`

	// Journal entries older than this are purged; 0 keeps them forever.
	JournalRetentionDays int `mapstructure:"JOURNAL_RETENTION_DAYS"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 8010)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("BACKEND_URL", "http://localhost:3000/api")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	v.SetDefault("CB_FAILURE_THRESHOLD", 5)
	v.SetDefault("CB_SUCCESS_THRESHOLD", 2)
	v.SetDefault("CB_OPEN_TIMEOUT_SECONDS", 30)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("DATABASE_URL", "file:tallerpos.db")
	v.SetDefault("LOOKUP_CACHE_TTL_SECONDS", 15)
	v.SetDefault("TERMINAL_STATE_TTL_HOURS", 12)
	v.SetDefault("CAJA_HISTORIAL_DIAS", 30)
	v.SetDefault("CURRENCY_SYMBOL", "Q")
	v.SetDefault("JOURNAL_RETENTION_DAYS", 90)

	// Optional .env file for local development; missing file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	return cfg, nil
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

func (c *Config) LookupCacheTTL() time.Duration {
	return time.Duration(c.LookupCacheTTLSeconds) * time.Second
}

func (c *Config) TerminalStateTTL() time.Duration {
	return time.Duration(c.TerminalStateTTLHours) * time.Hour
}

func (c *Config) CBOpenTimeout() time.Duration {
	return time.Duration(c.CBOpenTimeoutSeconds) * time.Second
}

func (c *Config) JournalRetention() time.Duration {
	return time.Duration(c.JournalRetentionDays) * 24 * time.Hour
}
