package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
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

// RedisConfig holds Redis connection settings shared by the presence cache
// and the background job queue.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	Disabled       bool
	PresenceTTLSec int
}

// UploadConfig holds the upload root directory and the static ingestion limits.
// Limits are fixed at startup; they are not mutable per request.
type UploadConfig struct {
	Dir               string
	PublicPrefix      string
	MaxFileSize       int64
	MaxFiles          int
	MaxGalleryFiles   int
	OptimizeThreshold int64
}

// CleanupConfig holds the schedules for the background reclamation jobs.
type CleanupConfig struct {
	OrphanCron          string
	UnverifiedCron      string
	MaxUnverifiedAgeHrs int
	Concurrency         int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	Redis    RedisConfig
	Upload   UploadConfig
	Cleanup  CleanupConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
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
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			Disabled:       getEnvBool("DISABLE_REDIS", false),
			PresenceTTLSec: getEnvInt("PRESENCE_TTL_SEC", 300),
		},
		Upload: UploadConfig{
			Dir:               getEnv("UPLOAD_DIR", "./uploads"),
			PublicPrefix:      getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads"),
			MaxFileSize:       getEnvInt64("UPLOAD_MAX_FILE_SIZE", 50*1024*1024),
			MaxFiles:          getEnvInt("UPLOAD_MAX_FILES", 20),
			MaxGalleryFiles:   getEnvInt("UPLOAD_MAX_GALLERY_FILES", 10),
			OptimizeThreshold: getEnvInt64("UPLOAD_OPTIMIZE_THRESHOLD", 10*1024*1024),
		},
		Cleanup: CleanupConfig{
			OrphanCron:          getEnv("CLEANUP_ORPHAN_CRON", "0 3 * * *"),
			UnverifiedCron:      getEnv("CLEANUP_UNVERIFIED_CRON", "0 */6 * * *"),
			MaxUnverifiedAgeHrs: getEnvInt("CLEANUP_MAX_UNVERIFIED_AGE_HOURS", 24),
			Concurrency:         getEnvInt("CLEANUP_CONCURRENCY", 4),
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
