package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// BadgerConfig contains Badger-specific settings.
type BadgerConfig struct {
	// Dir is the database directory. Created if missing.
	Dir string `koanf:"dir" yaml:"dir"`

	// SyncWrites fsyncs after each write.
	// Default: true (a login must survive a crash right after it)
	SyncWrites bool `koanf:"sync_writes" yaml:"sync_writes"`

	// InMemory keeps the database in memory only. Dir is ignored.
	InMemory bool `koanf:"in_memory" yaml:"in_memory"`
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:        dir,
		SyncWrites: true,
	}
}

// BadgerStorage implements Storage using Badger v3.
type BadgerStorage struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadger opens (or creates) a Badger database.
func NewBadger(cfg BadgerConfig, logger *slog.Logger) (*BadgerStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("badger: dir is required")
		}
		if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
			return nil, fmt.Errorf("badger: create dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}

	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = cfg.SyncWrites
	opts.BlockCacheSize = 8 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	logger.Debug("badger storage opened", "dir", cfg.Dir, "in_memory", cfg.InMemory)

	return &BadgerStorage{db: db, logger: logger}, nil
}

// Get retrieves a value by key.
func (s *BadgerStorage) Get(_ context.Context, key string) (string, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return "", s.mapErr(err)
	}

	return string(value), nil
}

// Set stores a key-value pair.
func (s *BadgerStorage) Set(_ context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	return s.mapErr(err)
}

// Remove deletes a key.
func (s *BadgerStorage) Remove(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return s.mapErr(err)
}

// Close closes the database.
func (s *BadgerStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	return nil
}

func (s *BadgerStorage) mapErr(err error) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrClosed
	}
	return err
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
// Badger is chatty at info level; its info output is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
