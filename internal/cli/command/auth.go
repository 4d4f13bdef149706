package command

import (
	"bufio"
	"errors"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sessionlink/internal/core/domain"
)

// ErrMissingToken is returned by login when no credential was supplied.
var ErrMissingToken = errors.New("missing token: pass TOKEN or pipe it on stdin")

// LoginCommand stores a bearer credential as the current session.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Store a bearer token as the current session",
		ArgsUsage: "[TOKEN | -]",
		Description: "Decodes TOKEN, persists it and prints the identity it carries.\n" +
			"With no argument or \"-\" the token is read from stdin, which keeps it\n" +
			"out of shell history.",
		Action: login,
	}
}

// LogoutCommand clears the current session.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Clear the current session",
		Action: logout,
	}
}

// WhoamiCommand prints the identity of the current session.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the identity of the current session",
		Action: whoami,
	}
}

// identityView is what login and whoami print.
type identityView struct {
	Authenticated bool           `json:"authenticated" yaml:"authenticated"`
	Subject       string         `json:"subject,omitempty" yaml:"subject,omitempty"`
	Privileged    bool           `json:"privileged" yaml:"privileged"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired       bool           `json:"expired" yaml:"expired"`
	Claims        map[string]any `json:"claims,omitempty" yaml:"claims,omitempty"`
}

func newIdentityView(s domain.Session, now time.Time) identityView {
	v := identityView{Authenticated: s.IsAuthenticated()}
	if s.Identity == nil {
		return v
	}

	v.Subject = s.Identity.Subject
	v.Privileged = s.Identity.Privileged
	v.Expired = s.Identity.IsExpired(now)
	v.Claims = s.Identity.Claims
	if !s.Identity.ExpiresAt.IsZero() {
		exp := s.Identity.ExpiresAt.UTC()
		v.ExpiresAt = &exp
	}
	return v
}

func login(c *cli.Context) error {
	raw := c.Args().First()
	if raw == "" || raw == "-" {
		line, err := bufio.NewReader(stdin(c)).ReadString('\n')
		if err != nil && line == "" {
			return ErrMissingToken
		}
		raw = line
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrMissingToken
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	if err := rt.Sessions.SetSession(c.Context, raw); err != nil {
		return err
	}

	return render(c, newIdentityView(rt.Sessions.Current(), time.Now()))
}

func logout(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	if err := rt.Sessions.ClearSession(c.Context); err != nil {
		return err
	}

	return render(c, newIdentityView(rt.Sessions.Current(), time.Now()))
}

func whoami(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	return render(c, newIdentityView(rt.Sessions.Current(), time.Now()))
}
