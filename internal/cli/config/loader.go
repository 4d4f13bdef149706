package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/sessionlink/internal/core/domain"
	"github.com/yndnr/sessionlink/internal/infra/confloader"
)

// Load builds the configuration from defaults, the config file, SESSIONLINK_*
// environment variables and flags, in increasing priority.
//
// An empty path means DefaultConfigPath, which may be absent. An explicit
// path must exist. flags holds dotted keys, e.g. {"storage.driver": "redis"}.
func Load(path string, flags map[string]any) (*Config, error) {
	cfg := Default()

	opt := confloader.WithConfigFile(path)
	if path == "" {
		opt = confloader.WithOptionalConfigFile(DefaultConfigPath())
	}

	l := confloader.NewLoader(opt)
	if err := l.Load(cfg); err != nil {
		return nil, domain.ErrInvalidConfig.WithCause(err)
	}
	if err := l.LoadMap(flags); err != nil {
		return nil, domain.ErrInvalidConfig.WithCause(err)
	}
	if err := l.Unmarshal(cfg); err != nil {
		return nil, domain.ErrInvalidConfig.WithCause(err)
	}

	cfg.Storage.Badger.Dir = expandHome(cfg.Storage.Badger.Dir)
	cfg.Storage.SQLite.DSN = expandHome(cfg.Storage.SQLite.DSN)
	cfg.MetricsFile = expandHome(cfg.MetricsFile)
	cfg.TLS.CAFile = expandHome(cfg.TLS.CAFile)
	cfg.TLS.CADir = expandHome(cfg.TLS.CADir)
	cfg.TLS.CertFile = expandHome(cfg.TLS.CertFile)
	cfg.TLS.KeyFile = expandHome(cfg.TLS.KeyFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf(format, args...))
	}

	if c.BaseURL == "" {
		return invalid("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("base_url must be an absolute http(s) URL: %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return invalid("timeout must be positive")
	}

	switch c.Output {
	case OutputJSON, OutputYAML, OutputText:
	default:
		return invalid("unsupported output format: %q", c.Output)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("unsupported log level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return invalid("unsupported log format: %q", c.Log.Format)
	}

	if c.RateLimit.RPS < 0 {
		return invalid("rate_limit.rps must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return invalid("rate_limit.burst must be at least 1")
	}

	if c.Session.Key == "" {
		return invalid("session.key is required")
	}
	if err := c.Storage.Validate(); err != nil {
		return invalid("storage: %v", err)
	}
	if err := c.TLS.Validate(); err != nil {
		return invalid("tls: %v", err)
	}

	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Storage.Redis.Password != "" {
		out.Storage.Redis.Password = "***"
	}
	if out.Storage.EncryptionKey != "" {
		out.Storage.EncryptionKey = "***"
	}
	return &out
}

// Map returns the configuration as a generic map keyed like the config
// file, for printing.
func (c *Config) Map() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return out, nil
}

// Save writes cfg to path as YAML with owner-only permissions. An empty path
// means DefaultConfigPath.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
