// Package registry maps the closed set of action kinds a plan may name to
// the handlers that perform them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/desktop-agent/internal/model"
)

// Kind is an action kind a plan step may name.
type Kind string

const (
	Open       Kind = "Open"
	Close      Kind = "Close"
	Search     Kind = "Search"
	Website    Kind = "Website"
	Volume     Kind = "Volume"
	Screenshot Kind = "Screenshot"
	Type       Kind = "Type"
	Shortcut   Kind = "Shortcut"
	Shell      Kind = "Shell"
	File       Kind = "File"
	Click      Kind = "Click"
	Spotify    Kind = "Spotify"
	TodoList   Kind = "TodoList"
	Shutdown   Kind = "Shutdown"
	Restart    Kind = "Restart"
	Sleep      Kind = "Sleep"
	Hibernate  Kind = "Hibernate"
)

// Kinds is every action kind, in display order.
var Kinds = []Kind{
	Open, Close, Search, Website, Volume, Screenshot, Type, Shortcut,
	Shell, File, Click, Spotify, TodoList, Shutdown, Restart, Sleep, Hibernate,
}

var descriptions = map[Kind]string{
	Open:       "Launch an application or URL through the OS run dialog",
	Close:      "Terminate a running application by process name",
	Search:     "Search the web for the given terms",
	Website:    "Open a URL in the default browser",
	Volume:     "Change volume: up, down, mute, unmute, or a level 0-100",
	Screenshot: "Save a screenshot, optionally to the given filename",
	Type:       "Type literal text into the focused window",
	Shortcut:   "Press a '+'-joined key combination, e.g. ctrl+l",
	Shell:      "Run a shell command; the parameters must contain the confirmation word",
	File:       "Find a file by name in common folders and open it",
	Click:      "Click a named on-screen component or an \"x,y\" coordinate",
	Spotify:    "Search Spotify in the browser and play the top result",
	TodoList:   "Open the Google Calendar task list",
	Shutdown:   "Shut the computer down; requires the confirmation word",
	Restart:    "Restart the computer; requires the confirmation word",
	Sleep:      "Put the computer to sleep; requires the confirmation word",
	Hibernate:  "Hibernate the computer; requires the confirmation word",
}

// Description returns a one-line summary of what the kind does.
func (k Kind) Description() string { return descriptions[k] }

var aliases = map[string]Kind{
	"powershell": Shell,
	"command":    Shell,
	"locate":     Click,
	"key":        Shortcut,
	"hotkey":     Shortcut,
	"url":        Website,
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, len(Kinds)+len(aliases))
	for _, k := range Kinds {
		m[strings.ToLower(string(k))] = k
	}
	for name, k := range aliases {
		m[name] = k
	}
	return m
}()

// ParseKind resolves a command name case-insensitively, including aliases.
func ParseKind(name string) (Kind, bool) {
	k, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Handler performs one action. Handlers report failures as errors.
// Deliberate no-ops (a refused shell command, nothing found on screen, no
// matching file) wrap ErrSkipped.
type Handler func(ctx context.Context, params model.Params) error

// ErrSkipped marks a step that ran but intentionally did nothing.
var ErrSkipped = errors.New("skipped")

// Skipped wraps ErrSkipped with a reason.
func Skipped(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSkipped, fmt.Sprintf(format, args...))
}

// ErrMissingHandler is returned by New when a kind has no handler.
var ErrMissingHandler = errors.New("missing handler")

// Registry is an immutable mapping from every Kind to its Handler.
type Registry struct {
	handlers map[Kind]Handler
}

// New validates that handlers binds every kind exactly once and nothing
// else, and returns the registry.
func New(handlers map[Kind]Handler) (*Registry, error) {
	known := make(map[Kind]bool, len(Kinds))
	for _, k := range Kinds {
		known[k] = true
	}
	var unknown []string
	for k := range handlers {
		if !known[k] {
			unknown = append(unknown, string(k))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("handlers bound to unknown kinds: %s", strings.Join(unknown, ", "))
	}

	r := &Registry{handlers: make(map[Kind]Handler, len(Kinds))}
	var missing []string
	for _, k := range Kinds {
		h := handlers[k]
		if h == nil {
			missing = append(missing, string(k))
			continue
		}
		r.handlers[k] = h
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHandler, strings.Join(missing, ", "))
	}
	return r, nil
}

// Lookup resolves a command name to its kind and handler. ok is false when
// the name matches no kind.
func (r *Registry) Lookup(name string) (Kind, Handler, bool) {
	k, ok := ParseKind(name)
	if !ok {
		return "", nil, false
	}
	return k, r.handlers[k], true
}
