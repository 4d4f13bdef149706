package command

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/sessionlink/internal/client"
)

func TestGet_WithAndWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("GET /items", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, []map[string]any{{"id": 1, "name": "first"}})
	})

	out := env.mustRun("get", "/items")
	if got := env.server.last(t).Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization before login = %q, want none", got)
	}
	if !strings.Contains(out, `"name": "first"`) {
		t.Errorf("output = %s", out)
	}

	token := aliceToken(t)
	env.mustRun("login", token)
	env.mustRun("get", "/items")

	req := env.server.last(t)
	if got := req.Header.Get("Authorization"); got != "Bearer "+token {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := req.Header.Get("User-Agent"); !strings.HasPrefix(got, "sessionlink/") {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestPost_Data(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("POST /items", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusCreated, map[string]string{"id": "42"})
	})

	dataFile := filepath.Join(t.TempDir(), "item.json")
	if err := os.WriteFile(dataFile, []byte("{\n  \"name\": \"x\"\n}\n"), 0o600); err != nil {
		t.Fatalf("write data file: %v", err)
	}

	tests := []struct {
		name  string
		stdin string
		arg   string
	}{
		{"literal", "", `{"name": "x"}`},
		{"file", "", "@" + dataFile},
		{"stdin", `{"name":"x"}`, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(tt.stdin, "post", "/items", tt.arg)
			if err != nil {
				t.Fatalf("post error = %v", err)
			}
			if body := env.server.last(t).Body; body != `{"name":"x"}` {
				t.Errorf("body = %s, want {\"name\":\"x\"}", body)
			}
			if decodeJSON(t, out)["id"] != "42" {
				t.Errorf("output = %s", out)
			}
		})
	}
}

func TestPost_InvalidData(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "post", "/items", "{not json")
	if err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Errorf("post error = %v, want invalid JSON", err)
	}
}

func TestPut_WithoutData(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("PUT /items/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	out := env.mustRun("put", "/items/1")
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
	if body := env.server.last(t).Body; body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}

func TestDelete_Rejected(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("DELETE /items/1", func(w http.ResponseWriter, r *http.Request) {
		errorResponse(w, http.StatusForbidden, "forbidden")
	})

	_, err := env.run("", "delete", "/items/1")
	apiErr, ok := client.AsError(err)
	if !ok {
		t.Fatalf("delete error = %v, want *client.Error", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "forbidden" {
		t.Errorf("error = %+v", apiErr)
	}
}

func TestGet_NotFoundFallback(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>oops</html>"))
	})

	_, err := env.run("", "get", "/broken")
	apiErr, ok := client.AsError(err)
	if !ok {
		t.Fatalf("get error = %v, want *client.Error", err)
	}
	if apiErr.Message != client.DefaultErrorMessage {
		t.Errorf("Message = %q, want %q", apiErr.Message, client.DefaultErrorMessage)
	}
}

func TestGet_Headers(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("GET /items", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{})
	})

	env.mustRun("get", "-H", "X-Trace: abc", "-H", "Accept: application/json", "/items")

	req := env.server.last(t)
	if got := req.Header.Get("X-Trace"); got != "abc" {
		t.Errorf("X-Trace = %q", got)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
}

func TestGet_PlainTextBody(t *testing.T) {
	env := newTestEnv(t)
	env.server.handle("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	if out := env.mustRun("get", "/health"); out != "ok\n" {
		t.Errorf("output = %q, want %q", out, "ok\n")
	}
}

func TestGet_MissingEndpoint(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run("", "get"); err == nil || !strings.Contains(err.Error(), "missing ENDPOINT") {
		t.Errorf("get error = %v, want missing ENDPOINT", err)
	}
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[string]string
		wantErr bool
	}{
		{"none", nil, nil, false},
		{"simple", []string{"X-A: 1"}, map[string]string{"X-A": "1"}, false},
		{"value with colon", []string{"X-Time: 12:30"}, map[string]string{"X-Time": "12:30"}, false},
		{"empty value", []string{"X-Empty:"}, map[string]string{"X-Empty": ""}, false},
		{"no colon", []string{"X-A 1"}, nil, true},
		{"no name", []string{": 1"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHeaders(tt.values)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Errorf("parseHeaders() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got.Get(k) != v {
					t.Errorf("%s = %q, want %q", k, got.Get(k), v)
				}
			}
		})
	}
}
