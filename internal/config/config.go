package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Media backends
const (
	MediaBackendLocal = "local"
	MediaBackendS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Media   MediaConfig
	S3      S3Config
	JWT     JWTConfig
	OTEL    OTELConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	MaxUploadSizeMB int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// MediaConfig describes where staged files are written and how stores link to them
type MediaConfig struct {
	Backend      string
	Root         string
	BaseURL      string
	DefaultStore string
	// Stores maps store codes to their media base URL
	Stores map[string]string
}

// S3Config holds S3-compatible object store configuration
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// JWTConfig holds the admin token secret
type JWTConfig struct {
	Secret string
}

// OTELConfig holds OpenTelemetry exporter configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP/HTTP base URL, signal paths such as /v1/traces are appended
	Endpoint       string
	InstanceID     string
	Token          string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	baseURL := getEnv("MEDIA_BASE_URL", "http://localhost:8080/media/")
	defaultStore := getEnv("DEFAULT_STORE", "default")

	stores, err := parseStores(os.Getenv("STORES"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if _, ok := stores[defaultStore]; !ok {
		stores[defaultStore] = baseURL
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 2),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "retailer_media"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Media: MediaConfig{
			Backend:      strings.ToLower(getEnv("MEDIA_BACKEND", MediaBackendLocal)),
			Root:         getEnv("MEDIA_ROOT", "./pub/media"),
			BaseURL:      baseURL,
			DefaultStore: defaultStore,
			Stores:       stores,
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:8333"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", "any"),
			SecretKey: getEnv("S3_SECRET_KEY", "any"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "retailer-media"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("LOG_JSON", false),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	switch c.Media.Backend {
	case MediaBackendLocal:
		if c.Media.Root == "" {
			return fmt.Errorf("MEDIA_ROOT is required for the local media backend")
		}
	case MediaBackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.Media.Backend)
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is set")
	}
	return nil
}

// parseStores reads "code=url,code=url"
func parseStores(raw string) (map[string]string, error) {
	stores := make(map[string]string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return stores, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		code, url, ok := strings.Cut(strings.TrimSpace(pair), "=")
		code = strings.TrimSpace(code)
		url = strings.TrimSpace(url)
		if !ok || code == "" || url == "" {
			return nil, fmt.Errorf("invalid STORES entry %q, expected code=url", pair)
		}
		stores[code] = url
	}
	return stores, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
