package config

import (
	"fmt"
	"os"
	"path/filepath"

	"ucrm-export/internal/logger"
)

// DefaultCashMethodID is the payment method UUID UCRM assigns to cash
// payments. Overridable via CRM_CASH_METHOD_ID for installations that
// re-created the method.
const DefaultCashMethodID = "6efe0fa8-36b2-4dd1-b049-427bffc7d369"

type Config struct {
	// CRM Configuration
	CRMAPIURL    string
	CRMAppKey    string
	CashMethodID string

	// Export Configuration
	DataDir string

	// Google Sheets Configuration (optional push target)
	GoogleSheetURL string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		CRMAPIURL:      getEnv("CRM_API_URL", ""),
		CRMAppKey:      getEnv("CRM_APP_KEY", ""),
		CashMethodID:   getEnv("CRM_CASH_METHOD_ID", DefaultCashMethodID),
		DataDir:        getEnv("EXPORT_DATA_DIR", "data"),
		GoogleSheetURL: getEnv("GOOGLE_SHEET_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.CRMAPIURL == "" {
		return fmt.Errorf("CRM_API_URL is required")
	}
	if c.CRMAppKey == "" {
		return fmt.Errorf("CRM_APP_KEY is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// MappingPath is the location of the persisted accounting-label mapping.
func (c *Config) MappingPath() string {
	return filepath.Join(c.DataDir, "mapping.json")
}

// ProgressPath is the location of the shared export progress record.
func (c *Config) ProgressPath() string {
	return filepath.Join(c.DataDir, "progress.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
