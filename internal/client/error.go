package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultErrorMessage is used when a rejection carries no usable message.
const DefaultErrorMessage = "An error occurred"

// Error is a non-2xx response.
type Error struct {
	StatusCode int
	Message    string

	// Payload is the decoded error body. It is empty, never nil, when the
	// body was not a JSON object.
	Payload map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(status int, body []byte) *Error {
	payload := parseErrorPayload(body)
	return &Error{
		StatusCode: status,
		Message:    errorMessage(payload),
		Payload:    payload,
	}
}

// parseErrorPayload decodes body as a JSON object, falling back to an empty
// map for anything else.
func parseErrorPayload(body []byte) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return map[string]any{}
	}
	return payload
}

func errorMessage(payload map[string]any) string {
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	return DefaultErrorMessage
}
