package darwin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// Screenshotter captures the main display with the screencapture tool.
type Screenshotter struct {
	runner platform.Runner
}

// NewScreenshotter creates a new macOS screenshotter.
func NewScreenshotter(runner platform.Runner) *Screenshotter {
	return &Screenshotter{runner: runner}
}

// CaptureScreen captures the main display. screencapture needs the Screen
// Recording permission; without it the image only shows the desktop.
func (s *Screenshotter) CaptureScreen(opts platform.ScreenshotOptions) ([]byte, error) {
	format := "png"
	if opts.Format == "jpg" || opts.Format == "jpeg" {
		format = "jpg"
	}

	dir, err := os.MkdirTemp("", "desktop-agent-capture")
	if err != nil {
		return nil, fmt.Errorf("screenshot temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "screen."+format)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	// -x: no shutter sound, -m: main display only
	if _, err := s.runner.Run(ctx, nil, "screencapture", "-x", "-m", "-t", format, path); err != nil {
		return nil, fmt.Errorf("screenshot capture failed (check Screen Recording permission in System Settings > Privacy & Security > Screen Recording): %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	return data, nil
}
