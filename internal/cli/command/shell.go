package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlink/internal/cli/config"
	"github.com/yndnr/sessionlink/internal/cli/repl"
	"github.com/yndnr/sessionlink/internal/core/domain"
)

// ErrNestedShell is returned when "shell" is typed inside the shell.
var ErrNestedShell = errors.New("already in a shell")

// ShellCommand starts the interactive shell.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive shell sharing one session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "History file",
				Value: config.DefaultHistoryPath(),
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Keep history in memory only",
			},
		},
		Action: shell,
	}
}

func shell(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	historyFile := c.String("history")
	if c.Bool("no-history") {
		historyFile = ""
	}
	history := repl.NewHistory(historyFile, repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		rt.Logger.Warn("load shell history", "error", err)
	}

	c.App.Metadata[shellKey] = true
	defer delete(c.App.Metadata, shellKey)

	r := repl.New(shellExecutor(c),
		repl.WithIO(stdin(c), stdout(c)),
		repl.WithHistory(history),
	)

	unsubscribe := rt.Sessions.Subscribe(func(s domain.Session) {
		r.SetPrompt(repl.Prompt(s.Subject(), s.IsAuthenticated()))
	})
	defer unsubscribe()

	runErr := r.Run(c.Context)

	if err := history.Save(); err != nil {
		rt.Logger.Warn("save shell history", "error", err)
	}
	return runErr
}

// shellExecutor runs each line as a fresh invocation of the app that shares
// the parent's metadata, and therefore its runtime.
func shellExecutor(parent *cli.Context) repl.Executor {
	return func(ctx context.Context, args []string) error {
		if args[0] == "shell" {
			return ErrNestedShell
		}

		app := App()
		app.Metadata = parent.App.Metadata
		app.Reader = parent.App.Reader
		app.Writer = stdout(parent)
		app.ErrWriter = stderr(parent)

		return app.RunContext(ctx, append([]string{app.Name}, args...))
	}
}
