// Package executor performs the primitive desktop actions a plan step can
// name, on top of the platform backends and the screen locator.
package executor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/mj1618/desktop-agent/internal/registry"
	"go.uber.org/zap"
)

// Finder polls the screen for a named component.
type Finder interface {
	Wait(ctx context.Context, name string) (model.ScreenTarget, bool)
}

// Executor runs actions against a platform provider.
type Executor struct {
	provider *platform.Provider
	finder   Finder
	cfg      config.ActionsConfig
	logger   *zap.Logger
	out      io.Writer

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an executor. Transcript lines are written to out; finder may
// be nil, in which case only coordinate clicks are possible.
func New(p *platform.Provider, finder Finder, cfg config.ActionsConfig, logger *zap.Logger, out io.Writer) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Executor{
		provider: p,
		finder:   finder,
		cfg:      cfg,
		logger:   logger,
		out:      out,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Handlers binds every action kind to the executor.
func (e *Executor) Handlers() map[registry.Kind]registry.Handler {
	text := func(fn func(context.Context, string) error) registry.Handler {
		return func(ctx context.Context, p model.Params) error { return fn(ctx, p.String()) }
	}
	power := func(a platform.PowerAction) registry.Handler {
		return func(ctx context.Context, p model.Params) error { return e.Power(ctx, a, p.String()) }
	}
	return map[registry.Kind]registry.Handler{
		registry.Open:       text(e.Open),
		registry.Close:      text(e.Close),
		registry.Search:     text(e.Search),
		registry.Website:    text(e.Website),
		registry.Volume:     e.Volume,
		registry.Screenshot: text(e.Screenshot),
		registry.Type:       text(e.Type),
		registry.Shortcut:   text(e.Shortcut),
		registry.Shell:      text(e.Shell),
		registry.File:       text(e.OpenFile),
		registry.Click:      text(e.ClickComponent),
		registry.Spotify:    text(e.Spotify),
		registry.TodoList:   text(e.TodoList),
		registry.Shutdown:   power(platform.PowerShutdown),
		registry.Restart:    power(platform.PowerRestart),
		registry.Sleep:      power(platform.PowerSleep),
		registry.Hibernate:  power(platform.PowerHibernate),
	}
}

func (e *Executor) say(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format+"\n", args...)
}

func (e *Executor) inputter() (platform.Inputter, error) {
	if e.provider == nil || e.provider.Inputter == nil {
		return nil, fmt.Errorf("input simulation: %w", platform.ErrUnsupported)
	}
	return e.provider.Inputter, nil
}

func (e *Executor) processes() (platform.ProcessManager, error) {
	if e.provider == nil || e.provider.ProcessManager == nil {
		return nil, fmt.Errorf("process control: %w", platform.ErrUnsupported)
	}
	return e.provider.ProcessManager, nil
}

func (e *Executor) audio() (platform.AudioController, error) {
	if e.provider == nil || e.provider.AudioController == nil {
		return nil, fmt.Errorf("audio control: %w", platform.ErrUnsupported)
	}
	return e.provider.AudioController, nil
}

func (e *Executor) screen() (platform.Screenshotter, error) {
	if e.provider == nil || e.provider.Screenshotter == nil {
		return nil, fmt.Errorf("screen capture: %w", platform.ErrUnsupported)
	}
	return e.provider.Screenshotter, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
