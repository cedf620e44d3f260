package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Robinhuo1/TradingButler/pkg/errors"
)

type Config struct {
	App           AppConfig
	Importer      ImporterConfig
	Report        ReportConfig
	Postgres      PostgresConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"tradingbutler"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type ImporterConfig struct {
	// Format selects the broker export importer by registry name
	Format string `envconfig:"IMPORT_FORMAT" default:"tdameritrade"`
	Path   string `envconfig:"IMPORT_PATH" default:"trades.json"`
}

type ReportConfig struct {
	OutputPath string `envconfig:"REPORT_OUTPUT_PATH" default:"output.html"`
	// AsOf overrides the current date used for open-position holding
	// periods, RFC3339 date (YYYY-MM-DD). Empty means today.
	AsOf string `envconfig:"REPORT_AS_OF"`
}

type PostgresConfig struct {
	// Enabled gates persistence; a report-only run needs no database
	Enabled  bool   `envconfig:"POSTGRES_ENABLED" default:"false"`
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"tradingbutler"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"tradingbutler"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type TelegramConfig struct {
	// Enabled gates report delivery; token and chat IDs are required
	// only when on
	Enabled bool    `envconfig:"TELEGRAM_ENABLED" default:"false"`
	Token   string  `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatIDs []int64 `envconfig:"TELEGRAM_CHAT_IDS"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
