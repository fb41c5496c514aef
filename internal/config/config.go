package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Brevo       BrevoConfig
	Sheets      SheetsConfig
	Maintenance MaintenanceConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the optional actuals list cache.
// An empty Addr disables caching entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BrevoConfig contains credentials for the Brevo CRM contact sync.
type BrevoConfig struct {
	Enabled bool
	APIKey  string
	BaseURL string
	ListID  int64
}

// SheetsConfig contains configuration required to read the legacy
// bookkeeping spreadsheet during reconciliation.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MaintenanceConfig holds scheduler-related settings.
type MaintenanceConfig struct {
	CronSchedule    string
	ExpireAfterDays int
	Timezone        string
}

// Load reads environment variables (optionally from the provided file)
// and materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "barops"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Brevo: BrevoConfig{
			Enabled: os.Getenv("BREVO_SYNC_ENABLED") == "true",
			APIKey:  os.Getenv("BREVO_API_KEY"),
			BaseURL: getenvWithDefault("BREVO_BASE_URL", "https://api.brevo.com"),
			ListID:  int64(getenvInt("BREVO_LIST_ID", 5)),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_HISTORY_ID"),
		},
		Maintenance: MaintenanceConfig{
			CronSchedule:    getenvWithDefault("MAINTENANCE_CRON_SCHEDULE", "0 4 * * *"),
			ExpireAfterDays: getenvInt("EVENT_EXPIRE_AFTER_DAYS", 3),
			Timezone:        getenvWithDefault("TIMEZONE", "Asia/Jerusalem"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Brevo.Enabled && c.Brevo.APIKey == "" {
		return errors.New("BREVO_API_KEY must be provided when BREVO_SYNC_ENABLED is true")
	}

	if c.Maintenance.CronSchedule == "" {
		return errors.New("MAINTENANCE_CRON_SCHEDULE must be provided")
	}

	if c.Maintenance.ExpireAfterDays <= 0 {
		return errors.New("EVENT_EXPIRE_AFTER_DAYS must be positive")
	}

	if c.Maintenance.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

// ValidateSheets checks the fields the reconciliation CLI needs when
// reading history from a spreadsheet instead of a CSV file.
func (c *Config) ValidateSheets() error {
	switch {
	case c.Sheets.CredentialsPath == "":
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	case c.Sheets.SpreadsheetID == "":
		return errors.New("GOOGLE_SHEET_HISTORY_ID must be provided")
	}
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
