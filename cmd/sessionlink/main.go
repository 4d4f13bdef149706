// Package main is the sessionlink command.
//
// sessionlink keeps a bearer session on disk and sends authenticated
// requests to an HTTP API, either one command at a time or from an
// interactive shell.
package main

import (
	"context"
	"os"

	"github.com/yndnr/sessionlink/internal/cli/command"
	"github.com/yndnr/sessionlink/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background())

	err := command.App().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		command.PrintError(os.Stderr, err)
		os.Exit(command.ExitCode(err))
	}
}
