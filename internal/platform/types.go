package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// ScreenshotOptions configures what to capture.
type ScreenshotOptions struct {
	Format  string // "png" or "jpg"
	Quality int    // JPEG quality 1-100 (ignored for PNG)
}

// PowerAction is a power-state change.
type PowerAction string

const (
	PowerShutdown  PowerAction = "shutdown"
	PowerRestart   PowerAction = "restart"
	PowerSleep     PowerAction = "sleep"
	PowerHibernate PowerAction = "hibernate"
)

// NormalizeKeys splits a '+'-joined key combination, trims and lower-cases
// every key and maps common aliases to canonical names.
func NormalizeKeys(combo string) []string {
	var keys []string
	for _, k := range strings.Split(combo, "+") {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if alias, ok := keyAliases[k]; ok {
			k = alias
		}
		keys = append(keys, k)
	}
	return keys
}

var keyAliases = map[string]string{
	"win":      "super",
	"windows":  "super",
	"meta":     "super",
	"return":   "enter",
	"escape":   "esc",
	"control":  "ctrl",
	"command":  "cmd",
	"option":   "alt",
	"opt":      "alt",
	"del":      "delete",
	"pgup":     "pageup",
	"pgdn":     "pagedown",
	"spacebar": "space",
}

// Runner runs external programs. Backends that shell out to system tools
// take a Runner so tests can record invocations.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
