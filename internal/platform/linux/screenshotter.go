package linux

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// ImportScreenshotter captures the X11 root window with ImageMagick's import.
type ImportScreenshotter struct {
	runner platform.Runner
}

// NewScreenshotter creates a new screenshotter.
func NewScreenshotter(runner platform.Runner) *ImportScreenshotter {
	return &ImportScreenshotter{runner: runner}
}

// CaptureScreen captures the whole screen.
func (s *ImportScreenshotter) CaptureScreen(opts platform.ScreenshotOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	args := []string{"-silent", "-window", "root"}
	out := "png:-"
	if opts.Format == "jpg" || opts.Format == "jpeg" {
		quality := opts.Quality
		if quality <= 0 || quality > 100 {
			quality = 80
		}
		args = append(args, "-quality", strconv.Itoa(quality))
		out = "jpg:-"
	}
	args = append(args, out)

	data, err := s.runner.Run(ctx, nil, "import", args...)
	if err != nil {
		return nil, fmt.Errorf("screenshot capture failed (is ImageMagick installed and DISPLAY set?): %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("screenshot capture returned no data")
	}
	return data, nil
}
