package linux

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/mj1618/desktop-agent/internal/platform"
)

const defaultSink = "@DEFAULT_SINK@"

// PactlAudio controls the default PulseAudio/PipeWire sink with pactl.
type PactlAudio struct {
	runner platform.Runner
}

// NewAudio creates a new pactl audio controller.
func NewAudio(runner platform.Runner) *PactlAudio {
	return &PactlAudio{runner: runner}
}

func (a *PactlAudio) pactl(args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return a.runner.Run(ctx, nil, "pactl", args...)
}

var percentRe = regexp.MustCompile(`(\d+)%`)

// Volume returns the first channel's level of the default sink.
func (a *PactlAudio) Volume() (float64, error) {
	out, err := a.pactl("get-sink-volume", defaultSink)
	if err != nil {
		return 0, fmt.Errorf("read volume: %w", err)
	}
	m := percentRe.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("read volume: unexpected pactl output %q", out)
	}
	pct, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("read volume: %w", err)
	}
	return float64(pct) / 100, nil
}

// SetVolume sets the default sink to scalar (0..1) of full volume.
func (a *PactlAudio) SetVolume(scalar float64) error {
	pct := int(math.Round(clamp01(scalar) * 100))
	if _, err := a.pactl("set-sink-volume", defaultSink, fmt.Sprintf("%d%%", pct)); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	return nil
}

// SetMuted mutes or unmutes the default sink.
func (a *PactlAudio) SetMuted(muted bool) error {
	flag := "0"
	if muted {
		flag = "1"
	}
	if _, err := a.pactl("set-sink-mute", defaultSink, flag); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
