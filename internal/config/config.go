package config

import (
	"os"
	"strconv"
)

// ArxivConfig holds settings for the upstream arXiv figure fetcher.
type ArxivConfig struct {
	// AllowedHost is the only host fetched figure URLs may point at.
	AllowedHost string
	// TimeoutSec bounds a single upstream fetch.
	TimeoutSec int
	UserAgent  string
	// MaxBodyBytes caps how many bytes of an upstream body are read; 0 disables the cap.
	MaxBodyBytes int64
}

// DatabaseConfig holds PostgreSQL connection settings for the fetch audit log.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether enough settings are present to open a connection.
// The audit log is optional; an unconfigured database switches it off.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Name != ""
}

// MinIOConfig holds object storage settings for the figure cache.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether the figure cache is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Arxiv    ArxivConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:18001"),
		Port:    getEnv("PORT", "18001"), // default only for non-sensitive value
		Arxiv: ArxivConfig{
			AllowedHost:  getEnv("ARXIV_HOST", "arxiv.org"),
			TimeoutSec:   getEnvInt("ARXIV_TIMEOUT_SEC", 15),
			UserAgent:    getEnv("ARXIV_USER_AGENT", "arxivimg/1.0"),
			MaxBodyBytes: getEnvInt64("ARXIV_MAX_BODY_BYTES", 32<<20),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
