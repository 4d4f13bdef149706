// Package repl provides the interactive shell for sessionlink.
//
//   - repl.go: read-eval-print loop, prompt, builtins
//   - args.go: shell-style argument splitting
//   - completer.go: command completion ("get?" lists matches)
//   - history.go: command history persistence
//
// Commands typed into the shell share one session store, so a login is
// visible to every following request and the prompt shows who is logged in.
package repl
