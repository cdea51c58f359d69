package config

import (
	"os"
	"strconv"
	"time"

	"chillgrid/internal/errors"
)

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `validate:"required"`
	Paths    PathsConfig    `validate:"required"`
	Database DatabaseConfig
	Server   ServerConfig
}

// PipelineConfig holds the telemetry-assimilation run parameters that are
// not derivable from the input files themselves (spec.md §9).
type PipelineConfig struct {
	NominalStepSeconds float64
	EquipmentProfile   string // "screw", "centrifugal", "boiler", "auto"
	NameplateKW        float64
	TolerateReversal   bool
}

// PathsConfig holds the filesystem locations a run reads from and writes to.
type PathsConfig struct {
	InputDir  string `validate:"required"`
	OutputDir string `validate:"required"`
}

// DatabaseConfig holds the optional Postgres audit sink connection. A run
// never requires this to complete; it is absent (URL == "") by default.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds the optional approval UI and status API ports.
type ServerConfig struct {
	ApprovalPort string
	StatusPort   string
	GinMode      string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Pipeline: loadPipelineConfig(),
		Paths:    loadPathsConfig(),
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

func loadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		NominalStepSeconds: getEnvFloatOrDefault("NOMINAL_STEP_SECONDS", 900),
		EquipmentProfile:   getEnvOrDefault("EQUIPMENT_PROFILE", "auto"),
		NameplateKW:        getEnvFloatOrDefault("NAMEPLATE_KW", 0),
		TolerateReversal:   getEnvBoolOrDefault("TOLERATE_REVERSAL", false),
	}
}

func loadPathsConfig() PathsConfig {
	return PathsConfig{
		InputDir:  getEnvOrDefault("INPUT_DIR", "./data/input"),
		OutputDir: getEnvOrDefault("OUTPUT_DIR", "./data/output"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     os.Getenv("DATABASE_URL"), // empty disables the audit sink
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		ApprovalPort: getEnvOrDefault("APPROVAL_PORT", "8081"),
		StatusPort:   getEnvOrDefault("STATUS_PORT", "8082"),
		GinMode:      getEnvOrDefault("GIN_MODE", "release"),
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Paths.InputDir == "" {
		return errors.ConfigInvalid("input directory is required")
	}
	if cfg.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	switch cfg.Pipeline.EquipmentProfile {
	case "screw", "centrifugal", "boiler", "auto":
	default:
		return errors.ConfigInvalid("equipment profile must be one of screw, centrifugal, boiler, auto")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
