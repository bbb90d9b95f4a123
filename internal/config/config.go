package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// Manager loads and validates application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/claimequity/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("CLAIMEQUITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 50)
	viper.SetDefault("server.rate_burst", 100)

	// Storage defaults
	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.sqlite_path", "data/outcomes.db")
	viper.SetDefault("storage.migrations_path", "migrations")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", 5432)
	viper.SetDefault("storage.postgres.database", "claimequity")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "")
	viper.SetDefault("storage.postgres.ssl_mode", "disable")
	viper.SetDefault("storage.postgres.max_open_conns", 25)
	viper.SetDefault("storage.postgres.max_idle_conns", 5)
	viper.SetDefault("storage.postgres.conn_max_lifetime", "5m")

	// Bias alerting defaults
	viper.SetDefault("bias.min_alert_count", 5)
	viper.SetDefault("bias.max_alert_success_rate", 30.0)
	viper.SetDefault("bias.chart_path", "data/bias_heatmap.png")
	viper.SetDefault("bias.chart_top_n", 10)

	// Model defaults
	viper.SetDefault("model.path", "data/appeal_model.json")
	viper.SetDefault("model.training_data_path", "")
	viper.SetDefault("model.seed", 42)
	viper.SetDefault("model.synthetic_samples", 1000)

	// External API defaults
	viper.SetDefault("external_api.openai.base_url", "https://api.openai.com/v1/")
	viper.SetDefault("external_api.openai.model", "gpt-4o-mini")
	viper.SetDefault("external_api.openai.timeout", "30s")

	viper.SetDefault("external_api.xai.base_url", "https://api.x.ai/v1/")
	viper.SetDefault("external_api.xai.model", "grok-2-latest")
	viper.SetDefault("external_api.xai.timeout", "30s")

	viper.SetDefault("external_api.dedalus.base_url", "https://api.dedaluslabs.ai/v1/")
	viper.SetDefault("external_api.dedalus.model", "openai/gpt-4o-mini")
	viper.SetDefault("external_api.dedalus.timeout", "45s")

	viper.SetDefault("external_api.finance.base_url", "https://api.finnhub.io/api/v1/")
	viper.SetDefault("external_api.finance.timeout", "15s")

	viper.SetDefault("external_api.analytics.base_url", "https://api.amplitude.com/2/httpapi")
	viper.SetDefault("external_api.analytics.timeout", "10s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetStorageConfig returns storage configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// GetExternalAPIConfig returns external API configuration
func (m *Manager) GetExternalAPIConfig() *domain.ExternalAPIConfig {
	return &m.config.ExternalAPI
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate storage configuration
	switch config.Storage.Backend {
	case "sqlite":
		if config.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if config.Storage.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if config.Storage.Postgres.Database == "" {
			return fmt.Errorf("postgres database name is required")
		}
		if config.Storage.Postgres.Username == "" {
			return fmt.Errorf("postgres username is required")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", config.Storage.Backend)
	}

	// Validate bias alerting configuration
	if config.Bias.MinAlertCount < 0 {
		return fmt.Errorf("bias min alert count must not be negative")
	}
	if config.Bias.MaxAlertSuccessRate < 0 || config.Bias.MaxAlertSuccessRate > 100 {
		return fmt.Errorf("bias max alert success rate must be within [0, 100]")
	}
	if config.Bias.ChartTopN <= 0 {
		return fmt.Errorf("bias chart top N must be positive")
	}

	// Validate model configuration
	if config.Model.Path == "" {
		return fmt.Errorf("model path is required")
	}
	if config.Model.SyntheticSamples <= 0 {
		return fmt.Errorf("model synthetic sample count must be positive")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetPostgresConnectionString returns a formatted postgres connection string
func (m *Manager) GetPostgresConnectionString() string {
	pg := m.config.Storage.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.Username, pg.Password, pg.Database, pg.SSLMode)
}

// GetPostgresURL returns the postgres connection URL form used by the
// migration runner and the pgx pool.
func (m *Manager) GetPostgresURL() string {
	pg := m.config.Storage.Postgres
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pg.Username, pg.Password, pg.Host, pg.Port, pg.Database, pg.SSLMode)
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
