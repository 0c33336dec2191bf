// Package darwin provides macOS platform support. Mouse and keyboard input
// use CoreGraphics events and need CGo; screen capture, volume and process
// control drive screencapture, osascript, pkill and open.
package darwin

import "time"

// commandTimeout bounds every external tool invocation.
const commandTimeout = 10 * time.Second
