package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
)

// TextFormatter renders objects as KEY/VALUE rows and lists of objects as
// tables. Field names follow the json tags of the data.
type TextFormatter struct {
	NoHeaders bool
}

// Format formats data as aligned text.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	generic, err := normalize(data)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	switch v := generic.(type) {
	case map[string]any:
		f.writeRow(tw, "KEY", "VALUE")
		for _, k := range sortedKeys(v) {
			writeCells(tw, k, formatValue(v[k]))
		}
	case []any:
		f.writeList(tw, v)
	default:
		fmt.Fprintln(tw, formatValue(v))
	}

	return tw.Flush()
}

func (f *TextFormatter) writeList(tw io.Writer, items []any) {
	var columns []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k := range obj {
			if !slices.Contains(columns, k) {
				columns = append(columns, k)
			}
		}
	}
	slices.Sort(columns)

	if len(columns) == 0 {
		for _, item := range items {
			fmt.Fprintln(tw, formatValue(item))
		}
		return
	}

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c)
	}
	f.writeRow(tw, headers...)

	for _, item := range items {
		obj, _ := item.(map[string]any)
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = formatValue(obj[c])
		}
		writeCells(tw, cells...)
	}
}

func (f *TextFormatter) writeRow(tw io.Writer, cells ...string) {
	if f.NoHeaders {
		return
	}
	writeCells(tw, cells...)
}

func writeCells(tw io.Writer, cells ...string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

// normalize converts data into the generic JSON shape (maps, slices,
// scalars) so struct tags decide the field names.
func normalize(data any) (any, error) {
	switch data.(type) {
	case map[string]any, []any, string, float64, bool:
		return data, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	return out, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case bool:
		return fmt.Sprintf("%t", x)
	case []any:
		if len(x) == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", len(x))
	case map[string]any:
		if len(x) == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", len(x))
	default:
		return fmt.Sprintf("%v", x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
