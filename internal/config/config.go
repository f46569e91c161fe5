package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type (
	// Config holds configuration settings for the editor services
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Storage
		Store StoreConfig

		// Remote reconciler used by editing sessions
		RemoteURL      string
		RequestTimeout time.Duration

		// Editing
		DebounceDelay   time.Duration
		PollInterval    time.Duration
		ShutdownTimeout time.Duration
	}

	// StoreConfig selects and configures the version and run store
	StoreConfig struct {
		Kind  string
		Redis RedisConfig
		Blob  BlobConfig
	}

	// RedisConfig configures the Redis store
	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	// BlobConfig configures the blob store
	BlobConfig struct {
		URL    string
		Prefix string
	}
)

const (
	StoreKindRedis = "redis"
	StoreKindBlob  = "blob"
)

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "argyll-editor"
	DefaultRedisDB       = 0
	MaxRedisDB           = 15

	DefaultBlobURL    = "mem://"
	DefaultBlobPrefix = "editor/"

	DefaultRemoteURL       = "http://localhost:8080"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultDebounceDelay   = time.Second
	DefaultPollInterval    = time.Second
	DefaultShutdownTimeout = 10 * time.Second

	MaxRequestTimeout = 10 * time.Minute
	MaxDebounceDelay  = time.Minute
	MaxPollInterval   = time.Hour
)

var (
	ErrInvalidAPIPort        = errors.New("invalid API port")
	ErrInvalidStoreKind      = errors.New("invalid store kind")
	ErrRedisAddrRequired     = errors.New("redis address is required")
	ErrBlobURLRequired       = errors.New("blob URL is required")
	ErrInvalidRequestTimeout = errors.New("request timeout must be positive")
	ErrInvalidDebounceDelay  = errors.New("debounce delay must be positive")
	ErrInvalidPollInterval   = errors.New("poll interval must be positive")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// server, storage and editing sessions
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:  DefaultAPIHost,
		APIPort:  DefaultAPIPort,
		LogLevel: "info",
		Store: StoreConfig{
			Kind: StoreKindRedis,
			Redis: RedisConfig{
				Addr:   DefaultRedisEndpoint,
				DB:     DefaultRedisDB,
				Prefix: DefaultRedisPrefix,
			},
			Blob: BlobConfig{
				URL:    DefaultBlobURL,
				Prefix: DefaultBlobPrefix,
			},
		},
		RemoteURL:       DefaultRemoteURL,
		RequestTimeout:  DefaultRequestTimeout,
		DebounceDelay:   DefaultDebounceDelay,
		PollInterval:    DefaultPollInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	loadEnvString("API_HOST", &c.APIHost)
	loadEnvString("LOG_LEVEL", &c.LogLevel)
	loadEnvString("STORE_KIND", &c.Store.Kind)
	loadEnvString("REDIS_ADDR", &c.Store.Redis.Addr)
	loadEnvString("REDIS_PASSWORD", &c.Store.Redis.Password)
	loadEnvString("REDIS_PREFIX", &c.Store.Redis.Prefix)
	loadEnvString("BLOB_URL", &c.Store.Blob.URL)
	loadEnvString("BLOB_PREFIX", &c.Store.Blob.Prefix)
	loadEnvString("REMOTE_URL", &c.RemoteURL)

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"REDIS_DB", &c.Store.Redis.DB, -1, MaxRedisDB,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"REQUEST_TIMEOUT", &c.RequestTimeout, MaxRequestTimeout,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"DEBOUNCE_DELAY", &c.DebounceDelay, MaxDebounceDelay,
	); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"POLL_INTERVAL", &c.PollInterval, MaxPollInterval,
	); err != nil {
		return err
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	switch c.Store.Kind {
	case StoreKindRedis:
		if c.Store.Redis.Addr == "" {
			return ErrRedisAddrRequired
		}
	case StoreKindBlob:
		if c.Store.Blob.URL == "" {
			return ErrBlobURLRequired
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreKind, c.Store.Kind)
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}
	if c.DebounceDelay <= 0 {
		return ErrInvalidDebounceDelay
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	return nil
}

func loadEnvString(key string, dst *string) {
	if s := os.Getenv(key); s != "" {
		*dst = s
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration reads a Go duration string such as "500ms" and sets *dst
// when it is positive and no greater than max
func loadEnvDuration(key string, dst *time.Duration, max time.Duration) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if v <= 0 || v > max {
		return fmt.Errorf("invalid %s: %s out of range (0, %s]", key, v, max)
	}
	*dst = v
	return nil
}
