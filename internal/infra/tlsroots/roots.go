// Package tlsroots builds the TLS configuration used by the dispatcher's
// transport: extra trusted CAs on top of the system roots and an optional
// client certificate for servers that require mutual TLS.
package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when PEM data holds no certificate block.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

	// ErrIncompleteKeyPair is returned when only one of cert_file and
	// key_file is configured.
	ErrIncompleteKeyPair = errors.New("tlsroots: cert_file and key_file must be set together")
)

// Config describes the client-side TLS settings.
type Config struct {
	CAFile             string `koanf:"ca_file" yaml:"ca_file,omitempty"`
	CADir              string `koanf:"ca_dir" yaml:"ca_dir,omitempty"`
	CertFile           string `koanf:"cert_file" yaml:"cert_file,omitempty"`
	KeyFile            string `koanf:"key_file" yaml:"key_file,omitempty"`
	ServerName         string `koanf:"server_name" yaml:"server_name,omitempty"`
	InsecureSkipVerify bool   `koanf:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`
}

// IsZero reports whether no TLS setting differs from the transport default.
func (c Config) IsZero() bool {
	return c == Config{}
}

// HasClientCert reports whether a client key pair is configured.
func (c Config) HasClientCert() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// Validate checks that the key pair is either complete or absent.
func (c Config) Validate() error {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return ErrIncompleteKeyPair
	}
	return nil
}

// Pool is a set of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
}

// NewPool starts from the system roots, or from an empty pool on platforms
// where they cannot be loaded.
func NewPool() *Pool {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}
}

// NewEmptyPool creates a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddCertFile adds every certificate found in a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read %s: %w", path, err)
	}
	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%w (%s)", err, path)
	}
	return nil
}

// AddCertPEM adds the CERTIFICATE blocks of pemData. Other block types are
// skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	added := 0
	for {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.certPool.AddCert(cert)
		added++
	}
	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// AddCertDir adds the .pem, .crt and .cer files of dir and returns how many
// files were accepted. Files that fail to parse are reported through skipped.
func (p *Pool) AddCertDir(dir string, skipped func(path string, err error)) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("tlsroots: read dir %s: %w", dir, err)
	}

	n := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pem", ".crt", ".cer":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := p.AddCertFile(path); err != nil {
			if skipped != nil {
				skipped(path, err)
			}
			continue
		}
		n++
	}
	return n, nil
}

// CertPool returns the underlying x509.CertPool.
func (p *Pool) CertPool() *x509.CertPool {
	return p.certPool
}

// ClientTLSConfig builds a tls.Config for outgoing requests. It returns nil
// when cfg is zero so callers keep the transport default. A configured key
// pair is loaded once here; use a Watcher for a pair that changes on disk.
func ClientTLSConfig(cfg Config, skipped func(path string, err error)) (*tls.Config, error) {
	if cfg.IsZero() {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tc := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	if cfg.CAFile != "" || cfg.CADir != "" {
		pool := NewPool()
		if cfg.CAFile != "" {
			if err := pool.AddCertFile(cfg.CAFile); err != nil {
				return nil, err
			}
		}
		if cfg.CADir != "" {
			if _, err := pool.AddCertDir(cfg.CADir, skipped); err != nil {
				return nil, err
			}
		}
		tc.RootCAs = pool.CertPool()
	}

	if cfg.HasClientCert() {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: load key pair: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}

	return tc, nil
}
