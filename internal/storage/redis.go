package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces keys written by RedisStorage.
const DefaultRedisPrefix = "sessionlink:"

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string `koanf:"addr" yaml:"addr"`
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`
	DB       int    `koanf:"db" yaml:"db"`
	Prefix   string `koanf:"prefix" yaml:"prefix"`
}

// RedisStorage stores values as plain Redis strings without expiry.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*RedisStorage, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisWithClient(client, cfg.Prefix), nil
}

// NewRedisWithClient wraps an existing client. An empty prefix selects
// DefaultRedisPrefix.
func NewRedisWithClient(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (s *RedisStorage) key(name string) string {
	return s.prefix + name
}

// Get retrieves a value by key.
func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", s.mapErr(err)
	}
	return v, nil
}

// Set stores a value without expiry.
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.mapErr(s.client.Set(ctx, s.key(key), value, 0).Err())
}

// Remove deletes a key.
func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	return s.mapErr(s.client.Del(ctx, s.key(key)).Err())
}

// Close closes the client.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

func (s *RedisStorage) mapErr(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return err
}
