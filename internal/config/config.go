// Package config loads and validates the process configuration from the
// environment, optionally seeded from a local env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"socloud/internal/apperr"
	"socloud/internal/blob"
	"socloud/internal/logging"
)

// DefaultEnvFile is loaded when present. Variables already set win.
const DefaultEnvFile = "config/local.env"

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	CORS     CORSConfig
	Logging  logging.Config
	Storage  StorageConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds token settings
type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// StorageConfig selects the object store and the lifetime of read URLs.
type StorageConfig struct {
	blob.Config
	SignedURLTTL time.Duration
}

// AdminConfig seeds an administrator account at startup when both fields are set.
type AdminConfig struct {
	Email    string
	Password string
}

// Enabled reports whether an admin account should be seeded.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// Load reads configuration from environment variables after loading envFile
// if it exists.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	var problems []string

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.AutoMigrate = parseBool(getEnvOrDefault("AUTO_MIGRATE", "true"), &problems, "AUTO_MIGRATE")

	cfg.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		problems = append(problems, "PORT must be an integer")
	}
	cfg.Server.Port = port

	cfg.Security.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.Security.TokenTTL = parseDuration(getEnvOrDefault("TOKEN_TTL", "8760h"), &problems, "TOKEN_TTL")

	cfg.CORS.AllowedOrigins = parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"))

	cfg.Logging = logging.Config{
		Level:    getEnvOrDefault("LOG_LEVEL", "info"),
		Format:   getEnvOrDefault("LOG_FORMAT", "json"),
		FilePath: os.Getenv("LOG_FILE_PATH"),
	}

	cfg.Storage = StorageConfig{
		Config: blob.Config{
			Backend:         blob.Backend(strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", string(blob.BackendMemory)))),
			Bucket:          os.Getenv("STORAGE_BUCKET"),
			Prefix:          os.Getenv("STORAGE_PREFIX"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			CredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		},
		SignedURLTTL: parseDuration(getEnvOrDefault("SIGNED_URL_TTL", "8760h"), &problems, "SIGNED_URL_TTL"),
	}

	cfg.Admin = AdminConfig{
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}

	problems = append(problems, cfg.validate()...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: configuration validation failed:\n  - %s", apperr.ErrConfig, strings.Join(problems, "\n  - "))
	}

	return cfg, nil
}

func (c *Config) validate() []string {
	var problems []string

	if c.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}

	if c.Security.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.Security.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	switch c.Storage.Backend {
	case blob.BackendMemory:
	case blob.BackendS3, blob.BackendGCS:
		if c.Storage.Bucket == "" {
			problems = append(problems, "STORAGE_BUCKET is required for the "+string(c.Storage.Backend)+" backend")
		}
	default:
		problems = append(problems, "STORAGE_BACKEND must be one of: memory, s3, gcs")
	}

	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		problems = append(problems, "ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return problems
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func parseDuration(raw string, problems *[]string, key string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*problems = append(*problems, key+" must be a positive duration such as 24h")
		return 0
	}
	return d
}

func parseBool(raw string, problems *[]string, key string) bool {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*problems = append(*problems, key+" must be true or false")
	}
	return b
}
