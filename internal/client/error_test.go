package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseErrorPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLen int
	}{
		{"object", `{"message":"x","code":1}`, 2},
		{"empty object", `{}`, 0},
		{"null", `null`, 0},
		{"array", `[1,2]`, 0},
		{"string", `"oops"`, 0},
		{"html", `<h1>502</h1>`, 0},
		{"empty", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseErrorPayload([]byte(tt.body))
			if got == nil {
				t.Fatal("parseErrorPayload() = nil, want non-nil map")
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := &Error{StatusCode: 404, Message: "not found", Payload: map[string]any{}}
	if got := err.Error(); got != "not found (status 404)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAsError(t *testing.T) {
	apiErr := newError(403, []byte(`{"message":"forbidden"}`))
	wrapped := fmt.Errorf("list items: %w", apiErr)

	got, ok := AsError(wrapped)
	if !ok || got != apiErr {
		t.Errorf("AsError() = %v, %v; want original error", got, ok)
	}

	if _, ok := AsError(errors.New("other")); ok {
		t.Error("AsError() matched a plain error")
	}
}
