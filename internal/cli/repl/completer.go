package repl

import "strings"

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for the built-in command set.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"login", "logout", "whoami",
			"get", "post", "put", "delete",
			"config", "config show", "config init", "config path",
			"version",
			"help", "history", "exit", "quit",
		},
	}
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.TrimLeft(prefix, " ")
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
