// Package pages renders every screen of the MindCare client to a terminal
// and turns typed commands into page actions.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
)

var (
	// ErrNotAuthenticated is returned by guards when no session exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrAccessDenied is returned by guards when the session has another role.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnknownAction is returned when a page has no handler for an action.
	ErrUnknownAction = errors.New("unknown action")
)

// Page is one rendered screen. Handle runs a typed action; the caller
// re-renders afterwards.
type Page interface {
	Render(w io.Writer)
	Handle(ctx context.Context, action string, args []string) error
}

// RequireAuth fails unless me is a live session.
func RequireAuth(me *api.Me) error {
	if me == nil || !me.Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireRole fails unless me is a live session with role.
func RequireRole(me *api.Me, role api.Role) error {
	if err := RequireAuth(me); err != nil {
		return err
	}
	if me.Role != role {
		return ErrAccessDenied
	}
	return nil
}

func unknownAction(action string) error {
	return fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

// errorPage replaces a page whose load failed.
type errorPage struct {
	err error
}

func (p *errorPage) Render(w io.Writer) {
	heading(w, "Error")
	fmt.Fprintln(w, api.Message(p.err))
}

func (p *errorPage) Handle(_ context.Context, action string, _ []string) error {
	return unknownAction(action)
}

type notFoundPage struct{}

func (notFoundPage) Render(w io.Writer) {
	heading(w, "Not found")
	fmt.Fprintln(w, "Nothing lives at this address. Type 'home' to go back.")
}

func (notFoundPage) Handle(_ context.Context, action string, _ []string) error {
	return unknownAction(action)
}

// ParseCommand splits a typed line into an action and its arguments.
// Double quotes group words; the action is lowercased.
func ParseCommand(line string) (string, []string) {
	var (
		fields  []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			fields = append(fields, cur.String())
		}
		cur.Reset()
		started = false
	}
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// splitArgs separates key=value arguments from positional ones. Keys are
// lowercased.
func splitArgs(args []string) (map[string]string, []string) {
	named := make(map[string]string)
	var positional []string
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok && k != "" {
			named[strings.ToLower(k)] = v
			continue
		}
		positional = append(positional, a)
	}
	return named, positional
}

// argID parses the first argument as a record id.
func argID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("an id is required")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
