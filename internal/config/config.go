// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// SourceConfig describes one export feed (e.g. live trading vs simulation).
type SourceConfig struct {
	Name       string // Source identifier used in APIs and cache keys
	ExportsDir string // Root of dated export folders (YYYYMMDD subdirectories)
	FuturesDir string // Flat directory holding futures asset exports
}

// BackupConfig holds S3-compatible backup settings.
// Backups are disabled unless credentials are provided.
type BackupConfig struct {
	Enabled         bool
	Endpoint        string // Custom endpoint for R2/MinIO style stores, empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	Retention       int // Number of remote backups to keep
}

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	Sources  []SourceConfig
	LogLevel string
	Port     int
	DevMode  bool
	Backup   BackupConfig
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory, resolve to absolute path, ensure it exists
	dataDir := getEnv("FUNDWATCH_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("FUNDWATCH_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Sources:  loadSources(),
		Backup:   loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadSources builds the export source list from environment variables.
// Two sources are configured by default: live trading and simulation.
func loadSources() []SourceConfig {
	sources := []SourceConfig{}

	liveDir := getEnv("LIVE_EXPORTS_DIR", "")
	if liveDir != "" {
		sources = append(sources, SourceConfig{
			Name:       "live",
			ExportsDir: liveDir,
			FuturesDir: getEnv("LIVE_FUTURES_DIR", filepath.Join(liveDir, "futures")),
		})
	}

	simDir := getEnv("SIM_EXPORTS_DIR", "")
	if simDir != "" {
		sources = append(sources, SourceConfig{
			Name:       "sim",
			ExportsDir: simDir,
			FuturesDir: getEnv("SIM_FUTURES_DIR", filepath.Join(simDir, "futures")),
		})
	}

	return sources
}

// loadBackupConfig loads S3 backup settings. Enabled only when credentials are set.
func loadBackupConfig() BackupConfig {
	accessKey := getEnv("BACKUP_S3_ACCESS_KEY_ID", "")
	secretKey := getEnv("BACKUP_S3_SECRET_ACCESS_KEY", "")
	bucket := getEnv("BACKUP_S3_BUCKET", "")

	return BackupConfig{
		Enabled:         accessKey != "" && secretKey != "" && bucket != "",
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:          getEnv("BACKUP_S3_REGION", "auto"),
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		Bucket:          bucket,
		Prefix:          getEnv("BACKUP_S3_PREFIX", "fundwatch-backups"),
		Retention:       getEnvAsInt("BACKUP_RETENTION", 7),
	}
}

// Source returns the source configuration with the given name, nil if unknown.
func (c *Config) Source(name string) *SourceConfig {
	for i := range c.Sources {
		if c.Sources[i].Name == name {
			return &c.Sources[i]
		}
	}
	return nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	// Note: sources optional at startup; endpoints report not-found until configured

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
