package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Bias        BiasConfig        `mapstructure:"bias"`
	Model       ModelConfig       `mapstructure:"model"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// StorageConfig selects and configures the outcome store backend.
// Backend is "sqlite" (default, file-backed) or "postgres".
type StorageConfig struct {
	Backend        string         `mapstructure:"backend"`
	SQLitePath     string         `mapstructure:"sqlite_path"`
	Postgres       PostgresConfig `mapstructure:"postgres"`
	MigrationsPath string         `mapstructure:"migrations_path"`
}

// PostgresConfig represents postgres connection configuration
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// BiasConfig holds the alerting policy thresholds and chart output settings.
// The thresholds are policy constants surfaced as configuration so product
// can tune them without a code change.
type BiasConfig struct {
	MinAlertCount       int     `mapstructure:"min_alert_count"`
	MaxAlertSuccessRate float64 `mapstructure:"max_alert_success_rate"`
	ChartPath           string  `mapstructure:"chart_path"`
	ChartTopN           int     `mapstructure:"chart_top_n"`
}

// ModelConfig holds the appeal predictor artifact location and training knobs.
type ModelConfig struct {
	Path             string `mapstructure:"path"`
	TrainingDataPath string `mapstructure:"training_data_path"`
	Seed             int64  `mapstructure:"seed"`
	SyntheticSamples int    `mapstructure:"synthetic_samples"`
}

// ExternalAPIConfig represents configuration for the excluded collaborators
// (LLM summarization, appeal generation, financial impact, analytics).
type ExternalAPIConfig struct {
	OpenAI    LLMConfig       `mapstructure:"openai"`
	XAI       LLMConfig       `mapstructure:"xai"`
	Dedalus   LLMConfig       `mapstructure:"dedalus"`
	Finance   FinanceConfig   `mapstructure:"finance"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// LLMConfig represents a single LLM-backed API endpoint
type LLMConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FinanceConfig represents the financial impact API endpoint
type FinanceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AnalyticsConfig represents the event tracking endpoint
type AnalyticsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
