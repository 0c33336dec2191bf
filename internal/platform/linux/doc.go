// Package linux provides X11/PulseAudio platform support by driving the
// standard desktop tools: xdotool for input, ImageMagick import for screen
// capture, pactl for volume, pkill/xdg-open/systemctl for processes.
//
// The backends compile on every OS so they can be tested with a recording
// runner; only init.go registers them, and only on Linux.
package linux

import "time"

// commandTimeout bounds every external tool invocation.
const commandTimeout = 10 * time.Second
