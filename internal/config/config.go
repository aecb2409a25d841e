package config

import (
	"os"
	"strconv"

	"chartlab/domain/cleaning"
	"chartlab/internal/errors"
	"chartlab/internal/schema"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Inference InferenceConfig
	Cleaning  CleaningConfig
	Paths     PathConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional snapshot store settings. Snapshots are
// disabled when URL is empty.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a snapshot store is configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// InferenceConfig holds schema inference thresholds
type InferenceConfig struct {
	NumericThreshold          float64
	DatetimeThreshold         float64
	CategoricalMaxRatio       float64
	CategoricalMaxCardinality int
	SampleSize                int
}

// SchemaConfig converts the config into inference thresholds
func (c InferenceConfig) SchemaConfig() schema.Config {
	return schema.Config{
		NumericThreshold:          c.NumericThreshold,
		DatetimeThreshold:         c.DatetimeThreshold,
		CategoricalMaxRatio:       c.CategoricalMaxRatio,
		CategoricalMaxCardinality: c.CategoricalMaxCardinality,
		SampleSize:                c.SampleSize,
	}
}

// CleaningConfig holds outlier detection policy knobs
type CleaningConfig struct {
	IQRMultiplier   float64
	ZScoreThreshold float64
}

// Policy converts the config into a domain cleaning policy
func (c CleaningConfig) Policy() cleaning.Policy {
	return cleaning.Policy{
		IQRMultiplier:   c.IQRMultiplier,
		ZScoreThreshold: c.ZScoreThreshold,
	}
}

// PathConfig holds file system paths
type PathConfig struct {
	ChartSpecDir string
	UploadDir    string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Inference: InferenceConfig{
			NumericThreshold:          getEnvFloatOrDefault("INFER_NUMERIC_THRESHOLD", 0.90),
			DatetimeThreshold:         getEnvFloatOrDefault("INFER_DATETIME_THRESHOLD", 0.90),
			CategoricalMaxRatio:       getEnvFloatOrDefault("INFER_CATEGORICAL_MAX_RATIO", 0.5),
			CategoricalMaxCardinality: getEnvIntOrDefault("INFER_CATEGORICAL_MAX_CARDINALITY", 50),
			SampleSize:                getEnvIntOrDefault("INFER_SAMPLE_SIZE", 1000),
		},
		Cleaning: CleaningConfig{
			IQRMultiplier:   getEnvFloatOrDefault("CLEAN_IQR_MULTIPLIER", 1.5),
			ZScoreThreshold: getEnvFloatOrDefault("CLEAN_ZSCORE_THRESHOLD", 3.0),
		},
		Paths: PathConfig{
			ChartSpecDir: getEnvOrDefault("CHART_SPEC_DIR", "out/charts"),
			UploadDir:    getEnvOrDefault("UPLOAD_DIR", os.TempDir()),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Inference.NumericThreshold <= 0 || config.Inference.NumericThreshold > 1 {
		return errors.ConfigInvalid("numeric threshold must be in (0, 1]")
	}
	if config.Inference.DatetimeThreshold <= 0 || config.Inference.DatetimeThreshold > 1 {
		return errors.ConfigInvalid("datetime threshold must be in (0, 1]")
	}
	if config.Cleaning.IQRMultiplier <= 0 {
		return errors.ConfigInvalid("IQR multiplier must be positive")
	}
	if config.Cleaning.ZScoreThreshold <= 0 {
		return errors.ConfigInvalid("z-score threshold must be positive")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
