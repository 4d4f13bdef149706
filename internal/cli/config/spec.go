package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/yndnr/sessionlink/internal/infra/tlsroots"
	"github.com/yndnr/sessionlink/internal/storage"
	"github.com/yndnr/sessionlink/internal/telemetry/logger"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:3000/api"

// Output formats.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputText = "text"
)

// Config is the configuration for sessionlink.
type Config struct {
	// BaseURL is prepended verbatim to every endpoint.
	BaseURL string        `koanf:"base_url" yaml:"base_url"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	Output  string        `koanf:"output" yaml:"output"` // json, yaml, text

	Log     logger.Config  `koanf:"log" yaml:"log"`
	Session SessionConfig  `koanf:"session" yaml:"session"`
	Storage storage.Config `koanf:"storage" yaml:"storage"`

	RateLimit RateLimitConfig `koanf:"rate_limit" yaml:"rate_limit"`

	// TLS adds trusted CAs and a client certificate to the transport.
	TLS tlsroots.Config `koanf:"tls" yaml:"tls,omitempty"`

	// MetricsFile, when set, receives Prometheus metrics in the textfile
	// collector format after each command.
	MetricsFile string `koanf:"metrics_file" yaml:"metrics_file,omitempty"`
}

// RateLimitConfig throttles outgoing requests. RPS 0 disables throttling.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" yaml:"rps"`
	Burst int     `koanf:"burst" yaml:"burst"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// Key is the storage key the credential is kept under.
	Key string `koanf:"key" yaml:"key"`
}

// Default returns the default configuration.
func Default() *Config {
	home := HomeDir()
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		Output:    OutputJSON,
		Log:       logger.DefaultConfig(),
		Session:   SessionConfig{Key: "token"},
		RateLimit: RateLimitConfig{Burst: 1},
		Storage: storage.Config{
			Driver: storage.DriverBadger,
			Badger: storage.DefaultBadgerConfig(filepath.Join(home, "data")),
			Redis:  storage.RedisConfig{Prefix: storage.DefaultRedisPrefix},
			SQLite: storage.SQLiteConfig{DSN: filepath.Join(home, "session.db")},
		},
	}
}

// HomeDir returns ~/.sessionlink.
func HomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".sessionlink")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), "config.yaml")
}

// DefaultHistoryPath returns the shell history file path.
func DefaultHistoryPath() string {
	return filepath.Join(HomeDir(), "history")
}
