package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads a local .env file when one is present. Deployments set the
// environment directly.
func LoadEnv() {
	godotenv.Load()
}

// DatabaseConfig holds the connection strings for the canonical store and
// the legacy (narrow column) schema used only by the migration command.
type DatabaseConfig struct {
	DSN            string
	LegacyDSN      string
	MigrationsPath string
	Database       string
}

// UpstreamConfig holds the base URLs of the external data sources.
type UpstreamConfig struct {
	GlobalAPIURL string
	KZGoURL      string
}

// ElasticConfig holds the connection details of the search index source.
type ElasticConfig struct {
	URL          string
	Index        string
	ScrollWindow string
	ChunkSize    int
}

// IngestConfig hoists the constants that drive the reconciliation loops.
type IngestConfig struct {
	PollDelay time.Duration
	ChunkSize int
}

// RedisConfig is the cache connection used by the read API.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// BucketConfig is the S3 destination for session logs and malformed dumps.
type BucketConfig struct {
	Region       string
	Endpoint     string
	AccessKey    string
	AccessSecret string
	LogBucket    string
}

type Config struct {
	Database DatabaseConfig
	Upstream UpstreamConfig
	Elastic  ElasticConfig
	Ingest   IngestConfig
	Redis    RedisConfig
	Bucket   BucketConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			DSN:            dsn,
			LegacyDSN:      os.Getenv("LEGACY_DATABASE_URL"),
			MigrationsPath: getEnvDefault("MIGRATIONS_PATH", "pkg/database/migrations"),
			Database:       getEnvDefault("DATABASE_NAME", "kzsync"),
		},
		Upstream: UpstreamConfig{
			GlobalAPIURL: getEnvDefault("GLOBAL_API_URL", "https://kztimerglobal.com/api/v2"),
			KZGoURL:      getEnvDefault("KZGO_API_URL", "https://kzgo.eu/api"),
		},
		Elastic: ElasticConfig{
			URL:          os.Getenv("ELASTIC_URL"),
			Index:        getEnvDefault("ELASTIC_INDEX", "kzrecords"),
			ScrollWindow: getEnvDefault("ELASTIC_SCROLL_WINDOW", "4m"),
			ChunkSize:    getEnvIntDefault("ELASTIC_CHUNK_SIZE", 1000),
		},
		Ingest: IngestConfig{
			PollDelay: getEnvDurationDefault("POLL_DELAY", 727*time.Millisecond),
			ChunkSize: getEnvIntDefault("INGEST_CHUNK_SIZE", 1000),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Bucket: BucketConfig{
			Region:       os.Getenv("BUCKET_REGION"),
			Endpoint:     os.Getenv("BUCKET_ENDPOINT"),
			AccessKey:    os.Getenv("BUCKET_ACCESS_KEY"),
			AccessSecret: os.Getenv("BUCKET_ACCESS_SECRET"),
			LogBucket:    os.Getenv("BUCKET_LOG_BUCKET"),
		},
	}

	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDurationDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
