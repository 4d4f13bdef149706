package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlink/internal/client"
)

// GetCommand performs an authenticated GET.
func GetCommand() *cli.Command {
	return requestCommand(http.MethodGet, false)
}

// PostCommand performs an authenticated POST.
func PostCommand() *cli.Command {
	return requestCommand(http.MethodPost, true)
}

// PutCommand performs an authenticated PUT.
func PutCommand() *cli.Command {
	return requestCommand(http.MethodPut, true)
}

// DeleteCommand performs an authenticated DELETE.
func DeleteCommand() *cli.Command {
	return requestCommand(http.MethodDelete, false)
}

func requestCommand(method string, withBody bool) *cli.Command {
	argsUsage := "ENDPOINT"
	if withBody {
		argsUsage = "ENDPOINT [DATA | @FILE | -]"
	}

	return &cli.Command{
		Name:      strings.ToLower(method),
		Usage:     fmt.Sprintf("Send an authenticated %s to BASE_URL+ENDPOINT", method),
		ArgsUsage: argsUsage,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   "Extra request header 'Name: value' (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			return doRequest(c, method, withBody)
		},
	}
}

func doRequest(c *cli.Context, method string, withBody bool) error {
	endpoint := c.Args().First()
	if endpoint == "" {
		return fmt.Errorf("%s: missing ENDPOINT", strings.ToLower(method))
	}

	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return err
	}

	var body any
	if withBody && c.Args().Len() > 1 {
		data, err := readData(c, c.Args().Get(1))
		if err != nil {
			return err
		}
		body = data
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	var raw []byte
	req := client.Request{
		Method:   method,
		Endpoint: endpoint,
		Body:     body,
		Header:   headers,
	}
	if err := rt.Client.Do(c.Context, req, &raw); err != nil {
		return err
	}

	return renderResponse(c, raw)
}

// readData resolves a DATA argument: "-" reads stdin, "@path" reads a file,
// anything else is the JSON text itself.
func readData(c *cli.Context, arg string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)

	switch {
	case arg == "-":
		data, err = io.ReadAll(stdin(c))
	case strings.HasPrefix(arg, "@"):
		data, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		data = []byte(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	if !json.Valid(data) {
		return nil, errors.New("data is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func parseHeaders(values []string) (http.Header, error) {
	if len(values) == 0 {
		return nil, nil
	}

	h := make(http.Header)
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want 'Name: value'", v)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

// renderResponse formats a JSON body and prints anything else verbatim.
func renderResponse(c *cli.Context, raw []byte) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}

	var data any
	if json.Unmarshal(raw, &data) != nil {
		return writeRaw(stdout(c), raw)
	}

	return render(c, data)
}

func writeRaw(w io.Writer, raw []byte) error {
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if raw[len(raw)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
