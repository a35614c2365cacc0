package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all settings, read from the environment.
type Config struct {
	// Storage
	Storage    string // json, sqlite or postgres
	DataFile   string // JSON file for the json driver
	SQLitePath string

	// Postgres
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// HTTP server
	HTTPAddr        string
	AllowedOrigins  []string
	UploadDir       string
	ShutdownTimeout time.Duration

	// Default CSV export target
	ExportFile string

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Storage:         strings.ToLower(getEnv("TRACKER_STORAGE", StorageJSON)),
		DataFile:        getEnv("TRACKER_DATA_FILE", "students.json"),
		SQLitePath:      getEnv("TRACKER_SQLITE_PATH", "students.db"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          getEnv("DB_NAME", "studentdb"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		ExportFile:      getEnv("EXPORT_FILE", "students_export.csv"),
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageJSON:
		if c.DataFile == "" {
			return fmt.Errorf("TRACKER_DATA_FILE is required for %s storage", c.Storage)
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("TRACKER_SQLITE_PATH is required for %s storage", c.Storage)
		}
	case StoragePostgres:
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required for %s storage", c.Storage)
		}
	default:
		return fmt.Errorf("unknown TRACKER_STORAGE %q (want json, sqlite or postgres)", c.Storage)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=" + c.DBSSLMode
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
