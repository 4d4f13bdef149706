package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yndnr/sessionlink/pkg/crypto/adaptive"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("storage: key not found")
	ErrClosed      = errors.New("storage: closed")
	ErrCorrupted   = errors.New("storage: stored value cannot be decoded")
)

// Driver identifiers.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Storage gets, sets and removes named string values.
//
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// Config selects and configures a storage driver.
type Config struct {
	// Driver is one of memory, badger, redis, sqlite. Default: badger.
	Driver string `koanf:"driver" yaml:"driver"`

	// EncryptionKey is an optional hex-encoded 32-byte key. When set, all
	// values are encrypted before they reach the driver.
	EncryptionKey string `koanf:"encryption_key" yaml:"encryption_key"`

	Badger BadgerConfig `koanf:"badger" yaml:"badger"`
	Redis  RedisConfig  `koanf:"redis" yaml:"redis"`
	SQLite SQLiteConfig `koanf:"sqlite" yaml:"sqlite"`
}

// Validate checks the driver name and encryption key.
func (c Config) Validate() error {
	switch c.Driver {
	case "", DriverMemory, DriverBadger, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Driver)
	}

	if c.EncryptionKey != "" {
		if _, err := adaptive.ParseKey(c.EncryptionKey); err != nil {
			return fmt.Errorf("storage encryption key: %w", err)
		}
	}

	switch c.Driver {
	case "", DriverBadger:
		if c.Badger.Dir == "" {
			return errors.New("badger storage requires dir")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis storage requires addr")
		}
	case DriverSQLite:
		if c.SQLite.DSN == "" {
			return errors.New("sqlite storage requires dsn")
		}
	}

	return nil
}

// Open creates the storage selected by cfg.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		s   Storage
		err error
	)

	driver := cfg.Driver
	if driver == "" {
		driver = DriverBadger
	}

	switch driver {
	case DriverMemory:
		s = NewMemory()
	case DriverBadger:
		s, err = NewBadger(cfg.Badger, logger)
	case DriverRedis:
		s, err = NewRedis(ctx, cfg.Redis)
	case DriverSQLite:
		s, err = NewSQLite(ctx, cfg.SQLite)
	}
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey != "" {
		key, err := adaptive.ParseKey(cfg.EncryptionKey)
		if err != nil {
			s.Close()
			return nil, err
		}
		c, err := adaptive.New(key)
		if err != nil {
			s.Close()
			return nil, err
		}
		s = NewEncrypted(s, c)
	}

	logger.Debug("storage opened", "driver", driver, "encrypted", cfg.EncryptionKey != "")
	return s, nil
}
