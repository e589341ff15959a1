package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"handsplit/internal/errors"
)

// DefaultDataFile is where the batting stats live when nothing else is given
const DefaultDataFile = "src_data/baseball_stats.csv"

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig    `validate:"required"`
	Logging LoggingConfig `validate:"required"`
}

// DataConfig holds input settings
type DataConfig struct {
	StatsFile string `validate:"required"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level   string `validate:"required,oneof=ERROR WARN INFO DEBUG TRACE"`
	Verbose bool
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:    *loadDataConfig(),
		Logging: *loadLoggingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		StatsFile: getEnvOrDefault("BATTING_STATS_FILE", DefaultDataFile),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:   strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "WARN")),
		Verbose: getEnvBoolOrDefault("VERBOSE", false),
	}
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, "invalid configuration")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
