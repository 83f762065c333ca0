package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores all configuration for the application.
type Config struct {
	Port        string
	DatabaseURL string // empty disables embed history
	MaxUploadMB int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (useful for local development without Docker)
	godotenv.Load()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080" // Default port
	}

	maxUpload := int64(64)
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_MB %q: must be a positive integer", v)
		}
		maxUpload = n
	}

	return &Config{
		Port:        port,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MaxUploadMB: maxUpload,
	}, nil
}

// MaxUploadBytes is the request body limit derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
