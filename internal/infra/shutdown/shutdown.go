package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ForceExitCode is the exit status used when a second signal arrives.
const ForceExitCode = 130

// Option configures WithSignals.
type Option func(*config)

type config struct {
	signals []os.Signal
	force   func()
}

// Signals overrides the watched signals.
func Signals(sigs ...os.Signal) Option {
	return func(c *config) {
		c.signals = sigs
	}
}

// OnForce replaces the action taken on the second signal.
func OnForce(fn func()) Option {
	return func(c *config) {
		c.force = fn
	}
}

// WithSignals returns a copy of parent that is cancelled on the first
// termination signal. stop releases the signal handler and cancels the
// context; it is safe to call more than once.
func WithSignals(parent context.Context, opts ...Option) (ctx context.Context, stop func()) {
	cfg := config{
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		force:   func() { os.Exit(ForceExitCode) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, cfg.signals...)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-done:
			return
		}
		select {
		case <-sigCh:
			cfg.force()
		case <-done:
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
			cancel()
		})
	}
	return ctx, stop
}
