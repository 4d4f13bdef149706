package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlink/internal/client"
	"github.com/yndnr/sessionlink/internal/core/domain"
	"github.com/yndnr/sessionlink/internal/infra/buildinfo"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConfig     = 2
	ExitRejected   = 3
	ExitCredential = 4
	ExitStorage    = 5
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "sessionlink",
		Usage:   "Authenticated HTTP client with a persistent session",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			GetCommand(),
			PostCommand(),
			PutCommand(),
			DeleteCommand(),
			ShellCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{},
		// Header values may contain commas.
		DisableSliceFlagSeparator: true,
		After: func(c *cli.Context) error {
			if inShell(c) {
				return nil
			}
			return closeRuntime(c)
		},
		// main reports errors; the shell must never exit the process.
		ExitErrHandler: func(*cli.Context, error) {},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.sessionlink/config.yaml)",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "API base URL, prepended to every endpoint",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: json, yaml, text",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout (e.g., 10s)",
		},
		&cli.StringFlag{
			Name:  "storage-driver",
			Usage: "Session storage: memory, badger, redis, sqlite",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to FILE on exit",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// flagOverrides maps explicitly set global flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	out := map[string]any{}

	stringFlags := map[string]string{
		"base-url":       "base_url",
		"output":         "output",
		"storage-driver": "storage.driver",
		"metrics-file":   "metrics_file",
	}
	for flag, key := range stringFlags {
		if c.IsSet(flag) {
			out[key] = c.String(flag)
		}
	}
	if c.IsSet("timeout") {
		out["timeout"] = c.Duration("timeout")
	}
	if c.Bool("verbose") {
		out["log.level"] = "debug"
	}

	return out
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

func stdin(c *cli.Context) io.Reader {
	if c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}

// PrintError prints an error message to stderr.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// ExitCode maps a command error to the process exit status, so scripts can
// tell a rejected request from a broken setup.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if _, ok := client.AsError(err); ok {
		return ExitRejected
	}
	switch domain.Code(err) {
	case domain.ErrInvalidConfig.Code:
		return ExitConfig
	case domain.ErrCredentialMalformed.Code:
		return ExitCredential
	case domain.ErrStorageFailure.Code:
		return ExitStorage
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) && exitErr.ExitCode() != 0 {
		return exitErr.ExitCode()
	}
	return ExitFailure
}
