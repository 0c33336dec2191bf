package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/registry"
	"go.uber.org/zap"
)

const volumeStep = 0.1

// ErrVolumeOutOfRange is returned for levels outside 0-100.
var ErrVolumeOutOfRange = errors.New("volume must be between 0 and 100")

var numberPattern = regexp.MustCompile(`-?\d+`)

// Volume handles up, down, mute, unmute and absolute levels such as 50,
// "volume 50" or "set to 50". Direction words win over numbers, so "up by
// 20" is one step up.
func (e *Executor) Volume(ctx context.Context, p model.Params) error {
	if n, ok := p.Number(); ok && p.IsNumber() {
		return e.SetVolume(ctx, int(math.Round(n)))
	}
	cmd := strings.ToLower(p.String())
	words := strings.FieldsFunc(cmd, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	has := func(w string) bool {
		for _, x := range words {
			if x == w {
				return true
			}
		}
		return false
	}

	switch {
	case has("unmute"):
		return e.setMuted(false)
	case has("mute"):
		return e.setMuted(true)
	case has("up"):
		return e.stepVolume(volumeStep)
	case has("down"):
		return e.stepVolume(-volumeStep)
	}
	if m := numberPattern.FindString(cmd); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			e.say("Volume must be between 0 and 100")
			return fmt.Errorf("%w: %w (got %s)", registry.ErrSkipped, ErrVolumeOutOfRange, m)
		}
		return e.SetVolume(ctx, n)
	}
	switch {
	case has("volume") || has("set"):
		e.say("Please specify a volume level (0-100)")
		return registry.Skipped("no volume level in %q", p.String())
	}
	e.say("Volume command not recognized. Use: up, down, mute, unmute, or volume [0-100]")
	return registry.Skipped("unrecognized volume command %q", p.String())
}

// SetVolume sets the master volume to level percent. Levels outside 0-100
// are rejected without touching the system volume.
func (e *Executor) SetVolume(_ context.Context, level int) error {
	if level < 0 || level > 100 {
		e.say("Volume must be between 0 and 100")
		return fmt.Errorf("%w: %w (got %d)", registry.ErrSkipped, ErrVolumeOutOfRange, level)
	}
	a, err := e.audio()
	if err != nil {
		return err
	}
	if err := a.SetVolume(float64(level) / 100); err != nil {
		return err
	}
	e.say("Volume set to %d%%", level)
	e.logger.Info("volume set", zap.Int("volume", level))
	return nil
}

func (e *Executor) stepVolume(delta float64) error {
	a, err := e.audio()
	if err != nil {
		return err
	}
	cur, err := a.Volume()
	if err != nil {
		return err
	}
	next := math.Max(0, math.Min(1, cur+delta))
	if err := a.SetVolume(next); err != nil {
		return err
	}
	pct := int(math.Round(next * 100))
	if delta > 0 {
		e.say("Volume increased to %d%%", pct)
	} else {
		e.say("Volume decreased to %d%%", pct)
	}
	e.logger.Info("volume changed", zap.Int("volume", pct))
	return nil
}

func (e *Executor) setMuted(muted bool) error {
	a, err := e.audio()
	if err != nil {
		return err
	}
	if err := a.SetMuted(muted); err != nil {
		return err
	}
	if muted {
		e.say("Volume muted")
	} else {
		e.say("Volume unmuted")
	}
	return nil
}
