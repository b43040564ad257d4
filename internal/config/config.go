package config

import (
	"os"
	"strconv"

	"gocausal/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Pipeline PipelineConfig
	Server   ServerConfig
}

// DataConfig holds dataset ingestion settings
type DataConfig struct {
	Path  string // csv or xlsx file
	Sheet string // Excel sheet name; first sheet when empty
}

// PipelineConfig holds the analysis run settings
type PipelineConfig struct {
	Treatment          string
	Outcome            string
	DiscoveryAlgorithm string
	NPermutations      int
	ApplySuggestions   bool
	IdentifyMethod     string
	EstimationMethod   string
	RefuterMethod      string
	SubsetFraction     float64
	TreatmentValue     *float64
	ControlValue       *float64
	Seed               int64
}

// ServerConfig holds the read-model server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			Path:  getEnvOrDefault("DATA_FILE", ""),
			Sheet: getEnvOrDefault("DATA_SHEET", ""),
		},
		Pipeline: PipelineConfig{
			Treatment:          os.Getenv("TREATMENT"),
			Outcome:            os.Getenv("OUTCOME"),
			DiscoveryAlgorithm: getEnvOrDefault("DISCOVERY_ALGORITHM", "pc"),
			NPermutations:      getEnvIntOrDefault("N_PERMUTATIONS", 100),
			ApplySuggestions:   getEnvBoolOrDefault("APPLY_SUGGESTIONS", true),
			IdentifyMethod:     getEnvOrDefault("IDENTIFY_METHOD", ""),
			EstimationMethod:   getEnvOrDefault("ESTIMATION_METHOD", "backdoor.linear_regression"),
			RefuterMethod:      getEnvOrDefault("REFUTER_METHOD", "ALL"),
			SubsetFraction:     getEnvFloatOrDefault("SUBSET_FRACTION", 0.9),
			TreatmentValue:     getEnvFloatPtr("TREATMENT_VALUE"),
			ControlValue:       getEnvFloatPtr("CONTROL_VALUE"),
			Seed:               int64(getEnvIntOrDefault("SEED", 1)),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Pipeline.Treatment == "" {
		return errors.Configuration("TREATMENT is required")
	}
	if cfg.Pipeline.Outcome == "" {
		return errors.Configuration("OUTCOME is required")
	}
	if cfg.Pipeline.NPermutations <= 0 {
		return errors.Configuration("N_PERMUTATIONS must be positive")
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

func getEnvFloatPtr(key string) *float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return &floatValue
		}
	}
	return nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
