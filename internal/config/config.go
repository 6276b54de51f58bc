// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string
	AppEnv string

	// Object storage (S3-compatible: MinIO locally, AWS S3 in production)
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageRegion     string
	StorageBucket     string
	StorageUseSSL     bool
	StorageTimeout    time.Duration
	StoragePublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/gallery"
}

// Load reads configuration from a .env file (if present) and environment
// variables. Missing required values abort startup.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		StorageEndpoint:  mustEnv("STORAGE_ENDPOINT"),
		StorageAccessKey: mustEnv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: mustEnv("STORAGE_SECRET_KEY"),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),
		StorageBucket:    mustEnv("STORAGE_BUCKET"),
		StorageUseSSL:    getEnv("STORAGE_USE_SSL", "false") == "true",
		StorageTimeout:   getDuration("STORAGE_TIMEOUT", 30*time.Second),
	}

	cfg.StoragePublicBase = strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE", cfg.defaultPublicBase()), "/")
	return cfg
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// defaultPublicBase derives the public object URL base from the endpoint when
// STORAGE_PUBLIC_BASE is not set explicitly (no CDN in front of the bucket).
func (c *Config) defaultPublicBase() string {
	scheme := "http"
	if c.StorageUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.StorageEndpoint + "/" + c.StorageBucket
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("required environment variable %s is not set", key)
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration in %s: %v", key, err)
	}
	return d
}
