package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const defaultPrompt = "sessionlink> "

// Executor runs one command line split into arguments.
type Executor func(ctx context.Context, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	completer *Completer
	history   *History

	// Commands whose lines never reach the history (they carry credentials).
	sensitive map[string]bool

	mu     sync.Mutex
	prompt string
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO sets the input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// WithCompleter sets the completer.
func WithCompleter(c *Completer) Option {
	return func(r *REPL) {
		r.completer = c
	}
}

// New creates a new REPL that hands every line to exec.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory("", DefaultHistorySize),
		sensitive: map[string]bool{"login": true},
		prompt:    defaultPrompt,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prompt returns the prompt for a session subject.
func Prompt(subject string, authenticated bool) string {
	switch {
	case !authenticated:
		return defaultPrompt
	case subject == "":
		return "(authenticated) " + defaultPrompt
	default:
		return subject + "@" + defaultPrompt
	}
}

// SetPrompt replaces the prompt. Safe to call from another goroutine.
func (r *REPL) SetPrompt(p string) {
	r.mu.Lock()
	r.prompt = p
	r.mu.Unlock()
}

func (r *REPL) currentPrompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompt
}

// Run reads lines until exit, EOF or ctx is done. Command errors are
// printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(r.output, r.currentPrompt())

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if done := r.handle(ctx, line); done {
			return nil
		}
	}
}

// handle runs one line and reports whether the loop should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	if strings.HasSuffix(line, "?") {
		r.printCompletions(strings.TrimSuffix(line, "?"))
		return false
	}

	args, err := SplitArgs(line)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	if !r.sensitive[args[0]] {
		r.history.Add(line)
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "help":
		r.printCompletions("")
		return false
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%5d  %s\n", i+1, entry)
		}
		return false
	}

	if err := r.exec(ctx, args); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
	}
	return false
}

func (r *REPL) printCompletions(prefix string) {
	for _, s := range r.completer.Complete(prefix) {
		fmt.Fprintln(r.output, s)
	}
}
