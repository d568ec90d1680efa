package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	// HTTP server
	Port string

	// Store selection
	StoreBackend string // "memory" or "sqlite"
	SQLiteDBPath string

	// Upload limits
	MaxUploadMB       int
	MaxFilesPerUpload int

	// Session
	SessionTTL time.Duration

	// Reporting
	TopMerchants int
}

// Load reads configuration from the environment, using .env when present.
func Load() *Config {
	// .env is optional; real env vars always win.
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		StoreBackend:      getEnv("STORE_BACKEND", "memory"),
		SQLiteDBPath:      getEnv("SQLITE_DB_PATH", "./data/cardlens.db"),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 32),
		MaxFilesPerUpload: getEnvInt("MAX_FILES_PER_UPLOAD", 12),
		SessionTTL:        getEnvDuration("SESSION_TTL", 12*time.Hour),
		TopMerchants:      getEnvInt("TOP_MERCHANTS", 10),
	}
}

// Validate checks the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid store backend '%s': must be one of [memory sqlite]", c.StoreBackend))
	}

	if c.MaxUploadMB < 1 || c.MaxUploadMB > 256 {
		errs = append(errs, fmt.Sprintf("invalid max upload size %d MB: must be between 1 and 256", c.MaxUploadMB))
	}
	if c.MaxFilesPerUpload < 1 || c.MaxFilesPerUpload > 100 {
		errs = append(errs, fmt.Sprintf("invalid max files per upload %d: must be between 1 and 100", c.MaxFilesPerUpload))
	}
	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.TopMerchants < 1 || c.TopMerchants > 50 {
		errs = append(errs, fmt.Sprintf("invalid top merchants count %d: must be between 1 and 50", c.TopMerchants))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
