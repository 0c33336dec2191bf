package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/platform"
	"go.uber.org/zap"
)

const pressInterval = 100 * time.Millisecond

// Click moves to t, then presses and releases the left button with a short
// pause between each phase.
func (e *Executor) Click(ctx context.Context, t model.ScreenTarget) error {
	inp, err := e.inputter()
	if err != nil {
		return err
	}
	if err := inp.MoveMouse(t.X, t.Y); err != nil {
		return err
	}
	if err := e.sleep(ctx, pressInterval); err != nil {
		return err
	}
	e.logger.Debug("mouse down", zap.Int("x", t.X), zap.Int("y", t.Y))
	if err := inp.MouseDown(t.X, t.Y, platform.MouseLeft); err != nil {
		return err
	}
	if err := e.sleep(ctx, pressInterval); err != nil {
		// Never leave the button held.
		_ = inp.MouseUp(t.X, t.Y, platform.MouseLeft)
		return err
	}
	e.logger.Debug("mouse up", zap.Int("x", t.X), zap.Int("y", t.Y))
	return inp.MouseUp(t.X, t.Y, platform.MouseLeft)
}

// Shortcut presses a '+'-joined key combination such as "ctrl+l" or "enter".
func (e *Executor) Shortcut(ctx context.Context, combo string) error {
	keys := platform.NormalizeKeys(combo)
	if len(keys) == 0 {
		return fmt.Errorf("empty key combination %q", combo)
	}
	inp, err := e.inputter()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := inp.KeyCombo(keys); err != nil {
		return fmt.Errorf("press %s: %w", strings.Join(keys, "+"), err)
	}
	e.say("Pressed %s", strings.Join(keys, "+"))
	return nil
}

// Type types literal text into the focused window.
func (e *Executor) Type(ctx context.Context, text string) error {
	if err := e.typeText(ctx, text); err != nil {
		return err
	}
	e.say("Typed: %s", text)
	return nil
}

func (e *Executor) typeText(ctx context.Context, text string) error {
	inp, err := e.inputter()
	if err != nil {
		return err
	}
	return inp.TypeText(ctx, text, int(e.cfg.TypeDelay/time.Millisecond))
}

func (e *Executor) pressEnter() error {
	inp, err := e.inputter()
	if err != nil {
		return err
	}
	return inp.KeyCombo([]string{"enter"})
}

// Launch opens the OS run affordance, types command and submits it.
func (e *Executor) Launch(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("nothing to launch")
	}
	inp, err := e.inputter()
	if err != nil {
		return err
	}
	if len(e.provider.RunDialogKeys) == 0 {
		return fmt.Errorf("no run dialog on this platform: %w", platform.ErrUnsupported)
	}
	if err := inp.KeyCombo(e.provider.RunDialogKeys); err != nil {
		return fmt.Errorf("open run dialog: %w", err)
	}
	if err := e.sleep(ctx, e.cfg.LaunchDelay); err != nil {
		return err
	}
	if err := e.typeText(ctx, command); err != nil {
		return err
	}
	return e.pressEnter()
}

// Navigate opens the browser home page, focuses the address bar and loads
// url.
func (e *Executor) Navigate(ctx context.Context, url string) error {
	procs, err := e.processes()
	if err != nil {
		return err
	}
	inp, err := e.inputter()
	if err != nil {
		return err
	}
	if err := procs.Open(ctx, e.cfg.BrowserHome); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	if err := e.sleep(ctx, e.cfg.PageLoadWait); err != nil {
		return err
	}
	mod := e.provider.PrimaryModifier
	if mod == "" {
		mod = "ctrl"
	}
	if err := inp.KeyCombo([]string{mod, "l"}); err != nil {
		return fmt.Errorf("focus address bar: %w", err)
	}
	if err := e.sleep(ctx, pressInterval); err != nil {
		return err
	}
	if err := e.typeText(ctx, url); err != nil {
		return err
	}
	return e.pressEnter()
}
