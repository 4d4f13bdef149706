package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlink/internal/cli/config"
	"github.com/yndnr/sessionlink/internal/cli/output"
	"github.com/yndnr/sessionlink/internal/client"
	"github.com/yndnr/sessionlink/internal/core/domain"
	"github.com/yndnr/sessionlink/internal/infra/tlsroots"
	"github.com/yndnr/sessionlink/internal/session"
	"github.com/yndnr/sessionlink/internal/storage"
	"github.com/yndnr/sessionlink/internal/telemetry/logger"
	"github.com/yndnr/sessionlink/internal/telemetry/metric"
	"github.com/yndnr/sessionlink/pkg/token"
)

// Metadata keys.
const (
	configKey  = "config"
	runtimeKey = "runtime"
	shellKey   = "shell"
)

// Runtime holds the components shared by the commands of one process.
type Runtime struct {
	Config   *config.Config
	Logger   logger.Logger
	Metrics  *metric.Registry
	Storage  storage.Storage
	Sessions *session.Store
	Client   *client.Client

	stopWatch context.CancelFunc
}

// NewRuntime opens storage, restores the persisted session and builds the
// dispatcher.
//
// A persisted credential that no longer decodes is logged and ignored so the
// user can log in again.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	st, err := storage.Open(ctx, cfg.Storage, logger.Slog(log))
	if err != nil {
		return nil, domain.ErrStorageFailure.WithDetails("open " + cfg.Storage.Driver).WithCause(err)
	}

	metrics := metric.NewRegistry()

	sessions := session.NewStore(st, token.NewJWTDecoder(),
		session.WithKey(cfg.Session.Key),
		session.WithLogger(log.With("component", "session")),
		session.WithMetrics(metrics),
	)
	if err := sessions.Init(ctx); err != nil {
		if !errors.Is(err, domain.ErrCredentialMalformed) {
			st.Close()
			return nil, err
		}
		log.Warn("ignoring persisted credential", "error", err)
	}

	rt := &Runtime{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Storage:  st,
		Sessions: sessions,
	}

	httpClient, err := rt.newHTTPClient(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}

	rt.Client = client.New(cfg.BaseURL, sessions,
		client.WithDoer(httpClient),
		client.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		client.WithLogger(log.With("component", "client")),
		client.WithMetrics(metrics),
	)
	return rt, nil
}

// newHTTPClient builds the transport. A configured client certificate is
// watched for rotation until the runtime is closed.
func (rt *Runtime) newHTTPClient(ctx context.Context) (*http.Client, error) {
	cfg := rt.Config
	hc := &http.Client{Timeout: cfg.Timeout}

	skipped := func(path string, err error) {
		rt.Logger.Warn("skipping CA file", "path", path, "error", err)
	}
	tc, err := tlsroots.ClientTLSConfig(cfg.TLS, skipped)
	if err != nil {
		return nil, domain.ErrInvalidConfig.WithDetails("tls").WithCause(err)
	}
	if tc == nil {
		return hc, nil
	}

	if cfg.TLS.HasClientCert() {
		w, err := tlsroots.NewWatcher(cfg.TLS.CertFile, cfg.TLS.KeyFile,
			tlsroots.WithLogger(rt.Logger.With("component", "tls")),
		)
		if err != nil {
			return nil, domain.ErrInvalidConfig.WithDetails("tls").WithCause(err)
		}
		w.Apply(tc)

		watchCtx, cancel := context.WithCancel(ctx)
		rt.stopWatch = cancel
		go func() {
			if err := w.Run(watchCtx); err != nil {
				rt.Logger.Warn("client certificate watcher stopped", "error", err)
			}
		}()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tc
	hc.Transport = transport
	return hc, nil
}

// Close stops the certificate watcher, writes the metrics file if one is
// configured, and closes storage.
func (rt *Runtime) Close() error {
	if rt.stopWatch != nil {
		rt.stopWatch()
	}

	var errs []error
	if rt.Config.MetricsFile != "" {
		if err := rt.Metrics.WriteTextfile(rt.Config.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := rt.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

// loadConfig returns the configuration, loading it on first use.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg, nil
	}

	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return nil, err
	}
	c.App.Metadata[configKey] = cfg
	return cfg, nil
}

// getRuntime returns the runtime, building it on first use.
func getRuntime(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	rt, err := NewRuntime(c.Context, cfg)
	if err != nil {
		return nil, err
	}
	c.App.Metadata[runtimeKey] = rt
	return rt, nil
}

func closeRuntime(c *cli.Context) error {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	return rt.Close()
}

func inShell(c *cli.Context) bool {
	on, _ := c.App.Metadata[shellKey].(bool)
	return on
}

// render writes data with the configured formatter.
func render(c *cli.Context, data any) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	f, err := output.NewFormatter(output.Format(cfg.Output))
	if err != nil {
		return err
	}
	return f.Format(stdout(c), data)
}
