package command

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShell_SharesSession(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("GET /items", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, []any{})
	})

	token := aliceToken(t)
	input := strings.Join([]string{
		"get /items",
		"login " + token,
		"get /items",
		"logout",
		"exit",
	}, "\n") + "\n"

	out, err := env.run(input, "shell", "--no-history")
	if err != nil {
		t.Fatalf("shell error = %v", err)
	}

	if !strings.HasPrefix(out, "sessionlink> ") {
		t.Errorf("first prompt missing:\n%s", out)
	}
	if !strings.Contains(out, "alice@sessionlink> ") {
		t.Errorf("prompt did not follow login:\n%s", out)
	}

	env.server.mu.Lock()
	requests := env.server.requests
	env.server.mu.Unlock()
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	if got := requests[0].Header.Get("Authorization"); got != "" {
		t.Errorf("first request Authorization = %q, want none", got)
	}
	if got := requests[1].Header.Get("Authorization"); got != "Bearer "+token {
		t.Errorf("second request Authorization = %q", got)
	}

	// The shell closed storage on exit, so a new process sees the logout.
	if got := decodeJSON(t, env.mustRun("whoami")); got["authenticated"] != false {
		t.Errorf("whoami after shell = %v", got)
	}
}

func TestShell_ErrorsDoNotExit(t *testing.T) {
	env := newTestEnv(t)

	input := "get /missing\nshell\nlogin not-a-token\nwhoami\n"
	out, err := env.run(input, "shell", "--no-history")
	if err != nil {
		t.Fatalf("shell error = %v", err)
	}

	for _, want := range []string{
		"Error: not found (status 404)",
		"Error: " + ErrNestedShell.Error(),
		"malformed credential",
		`"authenticated": false`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShell_History(t *testing.T) {
	env := newTestEnv(t)
	historyFile := filepath.Join(env.home, "history")

	input := "login " + aliceToken(t) + "\nwhoami\n"
	if _, err := env.run(input, "shell", "--history", historyFile); err != nil {
		t.Fatalf("shell error = %v", err)
	}

	data, err := os.ReadFile(historyFile)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if got := string(data); got != "whoami\n" {
		t.Errorf("history = %q, want only whoami", got)
	}
}
