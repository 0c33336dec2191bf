package platform

import "context"

// Inputter simulates mouse and keyboard input.
type Inputter interface {
	MoveMouse(x, y int) error
	MouseDown(x, y int, button MouseButton) error
	MouseUp(x, y int, button MouseButton) error
	Click(x, y int, button MouseButton, count int) error
	// TypeText types text with delayMs between characters and stops early
	// when ctx ends.
	TypeText(ctx context.Context, text string, delayMs int) error
	KeyCombo(keys []string) error
}

// Screenshotter captures the screen.
type Screenshotter interface {
	// CaptureScreen captures the full primary display and returns the image
	// bytes in the requested format.
	CaptureScreen(opts ScreenshotOptions) ([]byte, error)
}

// AudioController reads and changes the master output volume.
// Volumes are scalars in [0, 1].
type AudioController interface {
	Volume() (float64, error)
	SetVolume(scalar float64) error
	SetMuted(muted bool) error
}

// ProcessManager launches and terminates programs.
type ProcessManager interface {
	// Kill terminates every process with the given name.
	Kill(ctx context.Context, name string) error
	// Open hands a URL or file path to the OS default handler.
	Open(ctx context.Context, target string) error
	// Shell runs a command line through the host shell and returns its
	// combined output.
	Shell(ctx context.Context, command string) ([]byte, error)
	// Power performs a power-state change.
	Power(ctx context.Context, action PowerAction) error
}
