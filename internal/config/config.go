package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabaseURL string

	// List page fetching.
	FetchTimeout      time.Duration
	FetchMaxBytes     int64
	FetchUserAgent    string
	FetchBypass       bool
	ResolverCacheSize int

	ImportItemDelay time.Duration

	// Imported-location events.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaImportTopic string

	// Snapshots of pages that yielded no locations.
	SnapshotEnabled bool
	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioUseSSL     bool
	SnapshotBucket  string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is read first; variables already
// set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	importDelay, err := parseDuration("IMPORT_ITEM_DELAY", "100ms")
	if err != nil {
		return nil, err
	}
	maxBytes, err := parsePositiveInt("FETCH_MAX_BYTES", 8<<20)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("RESOLVER_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		FetchTimeout:      fetchTimeout,
		FetchMaxBytes:     int64(maxBytes),
		FetchUserAgent:    os.Getenv("FETCH_USER_AGENT"),
		FetchBypass:       sharedcfg.EnvOrDefault("FETCH_BYPASS", "true") == "true",
		ResolverCacheSize: cacheSize,

		ImportItemDelay: importDelay,

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaImportTopic: sharedcfg.EnvOrDefault("KAFKA_IMPORT_TOPIC", "location-imports"),

		SnapshotEnabled: os.Getenv("SNAPSHOT_ENABLED") == "true",
		MinioEndpoint:   os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:     os.Getenv("MINIO_USE_SSL") == "true",
		SnapshotBucket:  sharedcfg.EnvOrDefault("SNAPSHOT_BUCKET", "maplist-snapshots"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaImportTopic == "" {
			return nil, errors.New("KAFKA_IMPORT_TOPIC is required")
		}
	}
	if cfg.SnapshotEnabled && (cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		return nil, errors.New("SNAPSHOT_ENABLED is true but MINIO_ENDPOINT, MINIO_ACCESS_KEY or MINIO_SECRET_KEY is not set")
	}

	return cfg, nil
}

// RequireDatabase reports an error when DATABASE_URL is unset.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
