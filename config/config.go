package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend selectors
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMongo = "mongodb"
)

// Config holds all configuration for the EncryptBin service
type Config struct {
	Port int
	URL  string

	// Storage configuration
	Storage         string // "local", "s3", "mongodb"
	DataDir         string
	S3Bucket        string
	S3Prefix        string
	MongoURI        string
	MongoDB         string
	MongoCollection string

	// Paste configuration
	MaxPasteBytes  int64
	AllowPlaintext bool

	// EditTokens is the process-wide allowlist of shared edit tokens.
	// When non-empty it replaces per-paste edit keys for title updates.
	EditTokens []string

	// CleanupInterval enables the in-process janitor when > 0.
	CleanupInterval time.Duration

	// Rate limiting for paste creation, per client IP
	RateLimitRPS   float64
	RateLimitBurst int

	Version string
}

// DefaultConfig returns a configuration with the stock defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		Storage:         StorageLocal,
		DataDir:         "data",
		S3Prefix:        "pastes/",
		MongoURI:        "mongodb://localhost:27017",
		MongoDB:         "encryptbin",
		MongoCollection: "pastes",
		MaxPasteBytes:   10 * 1024 * 1024, // 10MB
		AllowPlaintext:  false,
		CleanupInterval: 0,
		RateLimitRPS:    2,
		RateLimitBurst:  10,
	}
}

// LoadConfig loads configuration from CLI flags and ENCRYPTBIN_* environment
// variables, flags taking precedence over environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	flag.IntVar(&cfg.Port, "port", getEnvInt("ENCRYPTBIN_PORT", cfg.Port), "Port to listen on")
	flag.StringVar(&cfg.URL, "url", getEnvString("ENCRYPTBIN_URL", cfg.URL), "Base URL for paste links")
	flag.StringVar(&cfg.Storage, "storage", getEnvString("ENCRYPTBIN_STORAGE", cfg.Storage), "Storage backend: local, s3, mongodb")
	flag.StringVar(&cfg.DataDir, "data-dir", getEnvString("ENCRYPTBIN_DATA_DIR", cfg.DataDir), "Directory for paste storage (local backend)")
	flag.StringVar(&cfg.S3Bucket, "s3-bucket", getEnvString("ENCRYPTBIN_S3_BUCKET", cfg.S3Bucket), "S3 bucket name (s3 backend)")
	flag.StringVar(&cfg.S3Prefix, "s3-prefix", getEnvString("ENCRYPTBIN_S3_PREFIX", cfg.S3Prefix), "S3 key prefix (s3 backend)")
	flag.StringVar(&cfg.MongoURI, "mongo-uri", getEnvString("ENCRYPTBIN_MONGO_URI", cfg.MongoURI), "MongoDB connection URI (mongodb backend)")
	flag.StringVar(&cfg.MongoDB, "mongo-db", getEnvString("ENCRYPTBIN_MONGO_DB", cfg.MongoDB), "MongoDB database name (mongodb backend)")
	flag.StringVar(&cfg.MongoCollection, "mongo-collection", getEnvString("ENCRYPTBIN_MONGO_COLLECTION", cfg.MongoCollection), "MongoDB collection name (mongodb backend)")
	flag.Int64Var(&cfg.MaxPasteBytes, "max-paste-bytes", getEnvInt64("ENCRYPTBIN_MAX_PASTE_BYTES", cfg.MaxPasteBytes), "Maximum accepted paste size in bytes")
	flag.BoolVar(&cfg.AllowPlaintext, "allow-plaintext", getEnvBool("ENCRYPTBIN_ALLOW_PLAINTEXT", cfg.AllowPlaintext), "Allow storing unencrypted pastes")
	flag.DurationVar(&cfg.CleanupInterval, "cleanup-interval", getEnvDuration("ENCRYPTBIN_CLEANUP_INTERVAL", cfg.CleanupInterval), "In-process expiry sweep interval (0 disables)")
	flag.Float64Var(&cfg.RateLimitRPS, "rate-limit-rps", getEnvFloat("ENCRYPTBIN_RATE_LIMIT_RPS", cfg.RateLimitRPS), "Paste creation rate limit per client IP, requests/second")
	flag.IntVar(&cfg.RateLimitBurst, "rate-limit-burst", getEnvInt("ENCRYPTBIN_RATE_LIMIT_BURST", cfg.RateLimitBurst), "Paste creation rate limit burst")

	editTokens := flag.String("edit-tokens", getEnvString("ENCRYPTBIN_EDIT_TOKENS", ""), "Comma-separated shared edit tokens (enables allowlist authorization)")
	flag.Parse()

	cfg.EditTokens = SplitTokens(*editTokens)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate catches configuration errors at startup rather than at the
// first request that needs the missing value.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageLocal:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for local storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("s3 bucket name is required for s3 storage")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("mongodb uri is required for mongodb storage")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage)
	}
	if c.MaxPasteBytes <= 0 {
		return fmt.Errorf("max paste size must be positive, got %d", c.MaxPasteBytes)
	}
	return nil
}

// SplitTokens parses a comma-separated token list, dropping empty entries.
func SplitTokens(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		return strings.EqualFold(val, "true") || val == "1"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
