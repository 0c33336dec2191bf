package darwin

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// Audio controls the system output volume through AppleScript.
type Audio struct {
	runner platform.Runner
}

// NewAudio creates a new macOS audio controller.
func NewAudio(runner platform.Runner) *Audio {
	return &Audio{runner: runner}
}

func (a *Audio) osascript(script string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return a.runner.Run(ctx, nil, "osascript", "-e", script)
}

func (a *Audio) Volume() (float64, error) {
	out, err := a.osascript("output volume of (get volume settings)")
	if err != nil {
		return 0, fmt.Errorf("read volume: %w", err)
	}
	pct, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("read volume: unexpected osascript output %q", out)
	}
	return float64(pct) / 100, nil
}

func (a *Audio) SetVolume(scalar float64) error {
	pct := int(math.Round(math.Max(0, math.Min(1, scalar)) * 100))
	if _, err := a.osascript(fmt.Sprintf("set volume output volume %d", pct)); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	return nil
}

func (a *Audio) SetMuted(muted bool) error {
	if _, err := a.osascript(fmt.Sprintf("set volume output muted %t", muted)); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}
