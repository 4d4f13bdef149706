package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteConfig holds the database location.
type SQLiteConfig struct {
	DSN string `koanf:"dsn" yaml:"dsn"`
}

// storedValue is the row persisted by SQLiteStorage.
type storedValue struct {
	Name      string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's naming strategy.
func (storedValue) TableName() string {
	return "stored_values"
}

// SQLiteStorage stores values in a single SQLite table via gorm.
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLite opens the database at cfg.DSN and migrates the schema.
func NewSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLiteStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlite dsn required")
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s, err := NewSQLiteWithDB(ctx, db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, err
	}
	return s, nil
}

// NewSQLiteWithDB uses an existing gorm handle and migrates the schema.
func NewSQLiteWithDB(ctx context.Context, db *gorm.DB) (*SQLiteStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite storage requires database handle")
	}
	if err := db.WithContext(ctx).AutoMigrate(&storedValue{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// Get retrieves a value by key.
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, error) {
	var row storedValue
	err := s.db.WithContext(ctx).Where(&storedValue{Name: key}).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return row.Value, nil
}

// Set upserts a value.
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	row := storedValue{Name: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

// Remove deletes a key.
func (s *SQLiteStorage) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where(&storedValue{Name: key}).Delete(&storedValue{}).Error
}

// Close closes the underlying connection pool.
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
