// Package command provides the sessionlink CLI commands.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, lifecycle hooks
//   - runtime.go: lazily built config, logger, storage, session store and client
//   - auth.go: login, logout, whoami
//   - request.go: get, post, put, delete
//   - shell.go: interactive shell sharing one session store
//   - config.go: config show, init, path
//   - version.go: build information
//
// Commands parse flags, call the session store or the dispatcher, and
// format output with the selected formatter.
package command
