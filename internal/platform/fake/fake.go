// Package fake provides recording in-memory platform backends for tests.
package fake

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// Recorder collects a log of backend calls in order.
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *Recorder) record(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Inputter records input events.
type Inputter struct {
	*Recorder
	Err error
}

func (f *Inputter) MoveMouse(x, y int) error {
	f.record("move %d,%d", x, y)
	return f.Err
}

func (f *Inputter) MouseDown(x, y int, _ platform.MouseButton) error {
	f.record("down %d,%d", x, y)
	return f.Err
}

func (f *Inputter) MouseUp(x, y int, _ platform.MouseButton) error {
	f.record("up %d,%d", x, y)
	return f.Err
}

func (f *Inputter) Click(x, y int, _ platform.MouseButton, count int) error {
	f.record("click %d,%d x%d", x, y, count)
	return f.Err
}

func (f *Inputter) TypeText(ctx context.Context, text string, _ int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.record("type %s", text)
	return f.Err
}

func (f *Inputter) KeyCombo(keys []string) error {
	f.record("keys %s", strings.Join(keys, "+"))
	return f.Err
}

// Screen returns a fixed image for every capture.
type Screen struct {
	*Recorder
	mu    sync.Mutex
	Image []byte
	Err   error
}

func (f *Screen) CaptureScreen(opts platform.ScreenshotOptions) ([]byte, error) {
	f.record("capture %s", opts.Format)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]byte(nil), f.Image...), nil
}

// SetImage replaces the image returned by later captures.
func (f *Screen) SetImage(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Image = b
}

// Audio keeps a volume scalar in memory.
type Audio struct {
	*Recorder
	Level float64
	Muted bool
	Err   error
}

func (f *Audio) Volume() (float64, error) {
	return f.Level, f.Err
}

func (f *Audio) SetVolume(scalar float64) error {
	if f.Err != nil {
		return f.Err
	}
	f.record("volume %.2f", scalar)
	f.Level = scalar
	return nil
}

func (f *Audio) SetMuted(muted bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.record("muted %v", muted)
	f.Muted = muted
	return nil
}

// Processes records process operations.
type Processes struct {
	*Recorder
	Output []byte
	Err    error
}

func (f *Processes) Kill(_ context.Context, name string) error {
	f.record("kill %s", name)
	return f.Err
}

func (f *Processes) Open(_ context.Context, target string) error {
	f.record("open %s", target)
	return f.Err
}

func (f *Processes) Shell(_ context.Context, command string) ([]byte, error) {
	f.record("shell %s", command)
	return f.Output, f.Err
}

func (f *Processes) Power(_ context.Context, action platform.PowerAction) error {
	f.record("power %s", action)
	return f.Err
}

// NewProvider returns a provider whose backends all share one Recorder.
func NewProvider() (*platform.Provider, *Recorder) {
	rec := &Recorder{}
	return &platform.Provider{
		Inputter:        &Inputter{Recorder: rec},
		Screenshotter:   &Screen{Recorder: rec},
		AudioController: &Audio{Recorder: rec, Level: 0.5},
		ProcessManager:  &Processes{Recorder: rec},
		RunDialogKeys:   []string{"super", "r"},
		PrimaryModifier: "ctrl",
	}, rec
}
