package linux

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// XdotoolInputter implements platform.Inputter with xdotool.
type XdotoolInputter struct {
	runner platform.Runner
}

// NewInputter creates a new xdotool inputter.
func NewInputter(runner platform.Runner) *XdotoolInputter {
	return &XdotoolInputter{runner: runner}
}

func (inp *XdotoolInputter) xdotool(args ...string) error {
	return inp.xdotoolContext(context.Background(), args...)
}

func (inp *XdotoolInputter) xdotoolContext(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	_, err := inp.runner.Run(ctx, nil, "xdotool", args...)
	return err
}

func (inp *XdotoolInputter) MoveMouse(x, y int) error {
	if err := inp.xdotool("mousemove", strconv.Itoa(x), strconv.Itoa(y)); err != nil {
		return fmt.Errorf("failed to move mouse to (%d, %d): %w", x, y, err)
	}
	return nil
}

func (inp *XdotoolInputter) MouseDown(x, y int, button platform.MouseButton) error {
	if err := inp.xdotool("mousemove", strconv.Itoa(x), strconv.Itoa(y), "mousedown", buttonNumber(button)); err != nil {
		return fmt.Errorf("failed to press mouse at (%d, %d): %w", x, y, err)
	}
	return nil
}

func (inp *XdotoolInputter) MouseUp(x, y int, button platform.MouseButton) error {
	if err := inp.xdotool("mousemove", strconv.Itoa(x), strconv.Itoa(y), "mouseup", buttonNumber(button)); err != nil {
		return fmt.Errorf("failed to release mouse at (%d, %d): %w", x, y, err)
	}
	return nil
}

func (inp *XdotoolInputter) Click(x, y int, button platform.MouseButton, count int) error {
	if count < 1 {
		count = 1
	}
	err := inp.xdotool("mousemove", strconv.Itoa(x), strconv.Itoa(y),
		"click", "--repeat", strconv.Itoa(count), buttonNumber(button))
	if err != nil {
		return fmt.Errorf("failed to click at (%d, %d): %w", x, y, err)
	}
	return nil
}

func (inp *XdotoolInputter) TypeText(ctx context.Context, text string, delayMs int) error {
	if delayMs < 0 {
		delayMs = 0
	}
	if err := inp.xdotoolContext(ctx, "type", "--delay", strconv.Itoa(delayMs), "--", text); err != nil {
		return fmt.Errorf("failed to type text: %w", err)
	}
	return nil
}

func (inp *XdotoolInputter) KeyCombo(keys []string) error {
	chord, err := keysymChord(keys)
	if err != nil {
		return err
	}
	if err := inp.xdotool("key", "--clearmodifiers", chord); err != nil {
		return fmt.Errorf("failed to press %s: %w", chord, err)
	}
	return nil
}

func buttonNumber(b platform.MouseButton) string {
	switch b {
	case platform.MouseMiddle:
		return "2"
	case platform.MouseRight:
		return "3"
	default:
		return "1"
	}
}

// X11 keysym names for the canonical key names produced by
// platform.NormalizeKeys.
var keysymMap = map[string]string{
	"enter": "Return", "tab": "Tab", "space": "space", "esc": "Escape",
	"backspace": "BackSpace", "delete": "Delete", "insert": "Insert",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"home": "Home", "end": "End", "pageup": "Prior", "pagedown": "Next",
	"printscreen": "Print", "capslock": "Caps_Lock",
	"volumeup": "XF86AudioRaiseVolume", "volumedown": "XF86AudioLowerVolume",
	"volumemute": "XF86AudioMute", "playpause": "XF86AudioPlay",
	"nexttrack": "XF86AudioNext", "prevtrack": "XF86AudioPrev",
}

var modifierKeysyms = map[string]string{
	"ctrl": "ctrl", "shift": "shift", "alt": "alt",
	"super": "super", "cmd": "super",
}

func keysymChord(keys []string) (string, error) {
	var parts []string
	found := false
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if mod, ok := modifierKeysyms[k]; ok {
			parts = append(parts, mod)
			continue
		}
		switch {
		case keysymMap[k] != "":
			parts = append(parts, keysymMap[k])
		case len(k) == 1:
			parts = append(parts, k)
		case len(k) >= 2 && k[0] == 'f' && isDigits(k[1:]):
			parts = append(parts, "F"+k[1:])
		default:
			return "", fmt.Errorf("unknown key: %q", k)
		}
		found = true
	}
	if !found {
		// A lone modifier ("super") is a valid key press on its own.
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "", fmt.Errorf("no key specified in combo, only modifiers")
	}
	return strings.Join(parts, "+"), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
