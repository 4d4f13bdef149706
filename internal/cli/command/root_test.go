package command

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlink/internal/core/domain"
)

func TestApp(t *testing.T) {
	app := App()

	if app.Name != "sessionlink" {
		t.Errorf("Name = %q, want %q", app.Name, "sessionlink")
	}
	if app.Usage == "" {
		t.Error("Usage should not be empty")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}

	required := []string{"login", "logout", "whoami", "get", "post", "put", "delete", "shell", "config", "version"}
	for _, name := range required {
		if !commandNames[name] {
			t.Errorf("missing command: %s", name)
		}
	}
}

func TestApp_GlobalFlags(t *testing.T) {
	app := App()

	flagNames := make(map[string]bool)
	for _, f := range app.Flags {
		flagNames[f.Names()[0]] = true
	}

	required := []string{"config", "base-url", "output", "timeout", "storage-driver", "metrics-file", "verbose"}
	for _, name := range required {
		if !flagNames[name] {
			t.Errorf("missing flag: %s", name)
		}
	}
}

func TestFlagOverrides(t *testing.T) {
	app := &cli.App{Name: "test", Flags: globalFlags()}

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range app.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply flag: %v", err)
		}
	}
	if err := set.Parse([]string{"--base-url", "https://api.example.test", "--timeout", "5s", "-V"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := flagOverrides(cli.NewContext(app, set, nil))

	if got["base_url"] != "https://api.example.test" {
		t.Errorf("base_url = %v", got["base_url"])
	}
	if got["timeout"] != 5*time.Second {
		t.Errorf("timeout = %v", got["timeout"])
	}
	if got["log.level"] != "debug" {
		t.Errorf("log.level = %v", got["log.level"])
	}
	if _, ok := got["output"]; ok {
		t.Error("unset flag produced an override")
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("version")
	info := decodeJSON(t, out)
	for _, key := range []string{"version", "commit", "build_time", "go_version"} {
		if _, ok := info[key]; !ok {
			t.Errorf("version output missing %q: %s", key, out)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run("", "--output", "table", "whoami"); err == nil {
		t.Error("run() should fail for an unsupported output format")
	}
}

func TestExitCode(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("GET /forbidden", func(w http.ResponseWriter, r *http.Request) {
		errorResponse(w, http.StatusForbidden, "forbidden")
	})
	_, rejected := env.run("", "get", "/forbidden")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"rejected", rejected, ExitRejected},
		{"config", domain.ErrInvalidConfig.WithDetails("x"), ExitConfig},
		{"credential", fmt.Errorf("login: %w", domain.ErrCredentialMalformed), ExitCredential},
		{"storage", domain.ErrStorageFailure.WithCause(errors.New("disk")), ExitStorage},
		{"cli exit", cli.Exit("usage", 7), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("boom"))
	if buf.String() != "error: boom\n" {
		t.Errorf("PrintError() wrote %q", buf.String())
	}
}
