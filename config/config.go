package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirebase = "firebase"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Server     ServerConfig
	App        AppConfig
	Firebase   FirebaseConfig
	Store      StoreConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Cloudinary CloudinaryConfig
	Admin      AdminConfig
	Features   FeaturesConfig
	Suggest    SuggestConfig
	Sentry     SentryConfig
}

type ServerConfig struct {
	Port           string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
	DatabaseURL     string
}

type StoreConfig struct {
	Backend string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig is the Postgres holding resident profiles and the audit log.
type DatabaseConfig struct {
	DSN string
}

type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	MaxBytes     int64
}

type AdminConfig struct {
	Emails     []string
	UIDs       []string
	PolicyFile string
}

type FeaturesConfig struct {
	AtomicRSVP        bool
	DishRetention     time.Duration
	DishPurgeSchedule string
	// TimeZone is the community's local zone, used when a caller sends none.
	TimeZone string
}

type SuggestConfig struct {
	GeminiAPIKey string
	GeminiModel  string
}

type SentryConfig struct {
	DSN string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	env := getEnv("APP_ENV", "development")
	defaultBackend := StoreMemory
	if env == "production" {
		defaultBackend = StoreFirebase
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		App: AppConfig{
			Environment: env,
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "skyon-backend"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			DatabaseURL:     getEnv("FIREBASE_DATABASE_URL", ""),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", defaultBackend)),
			Timeout: getEnvAsDuration("STORE_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
			MaxBytes:     int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Admin: AdminConfig{
			Emails:     getEnvAsList("ADMIN_EMAILS", nil),
			UIDs:       getEnvAsList("ADMIN_UIDS", nil),
			PolicyFile: getEnv("POLICY_FILE", ""),
		},
		Features: FeaturesConfig{
			AtomicRSVP:        getEnvAsBool("EVENTS_ATOMIC_RSVP", false),
			DishRetention:     getEnvAsDuration("DISH_RETENTION", 48*time.Hour),
			DishPurgeSchedule: getEnv("DISH_PURGE_SCHEDULE", "0 3 * * *"),
			TimeZone:          getEnv("TIME_ZONE", "Asia/Kolkata"),
		},
		Suggest: SuggestConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case StoreFirebase:
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firebase store")
		}
		if c.Firebase.DatabaseURL == "" {
			return fmt.Errorf("FIREBASE_DATABASE_URL is required for the firebase store")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of firebase, redis, memory (got %q)", c.Store.Backend)
	}

	if c.Cloudinary.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if _, err := time.LoadLocation(c.Features.TimeZone); err != nil {
		return fmt.Errorf("TIME_ZONE %q is not a known zone: %w", c.Features.TimeZone, err)
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
