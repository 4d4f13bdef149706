package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter is the default output for identity views and API responses.
// Values are indented two spaces and HTML characters are kept as received,
// so response bodies print the way the service sent them.
type JSONFormatter struct{}

// Format writes data followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
