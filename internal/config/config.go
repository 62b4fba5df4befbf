// Package config provides configuration management for the vehicle match engine.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion               string
	S3Bucket                string
	CatalogRawPrefix        string
	CatalogNormalizedPrefix string
	CatalogFromS3           bool

	// Database (profile records)
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Redis (profile preferences)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PreferenceTTL time.Duration

	// Local storage
	CatalogDir      string
	ProfilesCSVPath string
	ProfileBackend  string
	ReviewsPath     string

	// SES
	SESSenderEmail string
	DashboardURL   string

	// Scoring
	ScoringJitter bool

	// Application
	Stage       string
	LogLevel    string
	Port        string
	CORSOrigins []string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion:               getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:                getEnv("S3_BUCKET", "vehicle-catalog-dev"),
		CatalogRawPrefix:        getEnv("CATALOG_RAW_PREFIX", "uploads/"),
		CatalogNormalizedPrefix: getEnv("CATALOG_NORMALIZED_PREFIX", "normalized/"),
		CatalogFromS3:           getEnvBool("CATALOG_FROM_S3", false),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "vehicle_match"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),

		// Redis
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		PreferenceTTL: time.Duration(getEnvInt("PREFERENCE_TTL_HOURS", 0)) * time.Hour,

		// Local storage
		CatalogDir:      getEnv("CATALOG_DIR", "data/vehicles"),
		ProfilesCSVPath: getEnv("PROFILES_CSV_PATH", "data/profiles.csv"),
		ProfileBackend:  strings.ToLower(getEnv("PROFILE_BACKEND", "csv")),
		ReviewsPath:     getEnv("REVIEWS_PATH", "data/reviews.json"),

		// SES
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		DashboardURL:   getEnv("DASHBOARD_URL", "http://localhost:3000/inventory"),

		// Scoring
		ScoringJitter: getEnvBool("SCORING_JITTER", true),

		// Application
		Stage:       getEnv("STAGE", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable"
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// UsePostgres reports whether profile records live in PostgreSQL instead of the CSV file.
func (c *Config) UsePostgres() bool {
	return c.ProfileBackend == "postgres" || c.ProfileBackend == "postgresql"
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
