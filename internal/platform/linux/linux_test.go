package linux

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mj1618/desktop-agent/internal/platform"
)

type recordingRunner struct {
	calls  [][]string
	output []byte
	err    error
}

func (r *recordingRunner) Run(_ context.Context, _ []byte, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.output, r.err
}

func (r *recordingRunner) last() string {
	if len(r.calls) == 0 {
		return ""
	}
	return strings.Join(r.calls[len(r.calls)-1], " ")
}

func TestInputter_Commands(t *testing.T) {
	r := &recordingRunner{}
	inp := NewInputter(r)

	steps := []struct {
		do   func() error
		want string
	}{
		{func() error { return inp.MoveMouse(10, 20) }, "xdotool mousemove 10 20"},
		{func() error { return inp.MouseDown(10, 20, platform.MouseLeft) }, "xdotool mousemove 10 20 mousedown 1"},
		{func() error { return inp.MouseUp(10, 20, platform.MouseRight) }, "xdotool mousemove 10 20 mouseup 3"},
		{func() error { return inp.Click(5, 6, platform.MouseLeft, 2) }, "xdotool mousemove 5 6 click --repeat 2 1"},
		{func() error { return inp.TypeText(context.Background(), "hello world", 20) }, "xdotool type --delay 20 -- hello world"},
		{func() error { return inp.KeyCombo([]string{"ctrl", "l"}) }, "xdotool key --clearmodifiers ctrl+l"},
		{func() error { return inp.KeyCombo([]string{"enter"}) }, "xdotool key --clearmodifiers Return"},
		{func() error { return inp.KeyCombo([]string{"alt", "f2"}) }, "xdotool key --clearmodifiers alt+F2"},
		{func() error { return inp.KeyCombo([]string{"super"}) }, "xdotool key --clearmodifiers super"},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			t.Fatalf("%s: %v", s.want, err)
		}
		if got := r.last(); got != s.want {
			t.Errorf("got %q, want %q", got, s.want)
		}
	}
}

func TestKeysymChord_Errors(t *testing.T) {
	if _, err := keysymChord([]string{"ctrl", "shift"}); err == nil {
		t.Error("modifier-only chord should fail")
	}
	if _, err := keysymChord([]string{"hyperdrive"}); err == nil {
		t.Error("unknown key should fail")
	}
}

func TestScreenshotter(t *testing.T) {
	r := &recordingRunner{output: []byte("\x89PNG")}
	s := NewScreenshotter(r)

	data, err := s.CaptureScreen(platform.ScreenshotOptions{Format: "png"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("unexpected data %q", data)
	}
	if got, want := r.last(), "import -silent -window root png:-"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := s.CaptureScreen(platform.ScreenshotOptions{Format: "jpg", Quality: 50}); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "import -silent -window root -quality 50 jpg:-"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	r.output = nil
	if _, err := s.CaptureScreen(platform.ScreenshotOptions{}); err == nil {
		t.Error("empty capture should fail")
	}
}

func TestAudio(t *testing.T) {
	r := &recordingRunner{output: []byte("Volume: front-left: 32768 /  50% / -18.06 dB,   front-right: 32768 /  50% / -18.06 dB\n")}
	a := NewAudio(r)

	v, err := a.Volume()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0.5 {
		t.Errorf("Volume() = %v, want 0.5", v)
	}

	if err := a.SetVolume(0.37); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "pactl set-sink-volume @DEFAULT_SINK@ 37%"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if err := a.SetVolume(1.7); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "pactl set-sink-volume @DEFAULT_SINK@ 100%"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if err := a.SetMuted(true); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "pactl set-sink-mute @DEFAULT_SINK@ 1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	r.output = []byte("garbage")
	if _, err := a.Volume(); err == nil {
		t.Error("unparseable output should fail")
	}
}

func TestProcesses(t *testing.T) {
	r := &recordingRunner{}
	p := NewProcesses(r)

	if err := p.Kill(context.Background(), "brave.exe"); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "pkill -x brave"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if err := p.Kill(context.Background(), "  "); err == nil {
		t.Error("empty name should fail")
	}

	if err := p.Open(context.Background(), "https://example.com"); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "xdg-open https://example.com"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := p.Shell(context.Background(), "echo now"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.calls[len(r.calls)-1], []string{"sh", "-c", "echo now"}) {
		t.Errorf("unexpected shell call %v", r.calls[len(r.calls)-1])
	}

	if err := p.Power(context.Background(), platform.PowerSleep); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "systemctl suspend"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if err := p.Power(context.Background(), platform.PowerAction("warp")); err == nil {
		t.Error("unknown power action should fail")
	}

	r.err = errors.New("boom")
	if err := p.Open(context.Background(), "x"); err == nil {
		t.Error("runner error should propagate")
	}
}

func TestNewProvider(t *testing.T) {
	p := NewProvider(&recordingRunner{})
	if missing := p.Missing(); len(missing) != 0 {
		t.Errorf("missing backends: %v", missing)
	}
	if !reflect.DeepEqual(p.RunDialogKeys, []string{"alt", "f2"}) {
		t.Errorf("RunDialogKeys = %v", p.RunDialogKeys)
	}
}
