package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/mj1618/desktop-agent/internal/platform/fake"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	targets map[string]model.ScreenTarget
	asked   []string
}

func (f *stubFinder) Wait(_ context.Context, name string) (model.ScreenTarget, bool) {
	f.asked = append(f.asked, name)
	t, ok := f.targets[name]
	return t, ok
}

type harness struct {
	exec   *Executor
	rec    *fake.Recorder
	prov   *platform.Provider
	out    *bytes.Buffer
	sleeps []time.Duration
}

func newHarness(t *testing.T, finder Finder) *harness {
	t.Helper()
	cfg := config.NewDefaultConfig().Actions
	cfg.ScreenshotDir = t.TempDir()
	p, rec := fake.NewProvider()
	h := &harness{prov: p, rec: rec, out: &bytes.Buffer{}}
	h.exec = New(p, finder, cfg, nil, h.out)
	h.exec.sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return ctx.Err()
	}
	h.exec.now = func() time.Time { return time.Unix(1700000000, 0) }
	return h
}

func (h *harness) audio() *fake.Audio { return h.prov.AudioController.(*fake.Audio) }

func TestHandlers_CoverEveryKind(t *testing.T) {
	h := newHarness(t, nil)
	_, err := registry.New(h.exec.Handlers())
	require.NoError(t, err)
}

func TestClick_MoveDownUpWithPauses(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.exec.Click(context.Background(), model.ScreenTarget{X: 10, Y: 20}))
	assert.Equal(t, []string{"move 10,20", "down 10,20", "up 10,20"}, h.rec.Calls())
	assert.Equal(t, []time.Duration{pressInterval, pressInterval}, h.sleeps)
}

func TestTypeAndShortcut_StopWhenContextEnds(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, h.exec.Type(ctx, "hello"), context.Canceled)
	assert.ErrorIs(t, h.exec.Shortcut(ctx, "ctrl+l"), context.Canceled)
	assert.Empty(t, h.rec.Calls())
	assert.Empty(t, h.out.String())
}

func TestClick_CancelledReleasesButton(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	h.exec.sleep = func(context.Context, time.Duration) error {
		calls++
		if calls == 2 {
			cancel()
			return context.Canceled
		}
		return nil
	}
	err := h.exec.Click(ctx, model.ScreenTarget{X: 1, Y: 2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"move 1,2", "down 1,2", "up 1,2"}, h.rec.Calls())
}

func TestOpen_UsesRunDialog(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.exec.Open(context.Background(), "notepad"))
	assert.Equal(t, []string{"keys super+r", "type notepad", "keys enter"}, h.rec.Calls())
	assert.Equal(t, []time.Duration{time.Second}, h.sleeps)
	assert.Equal(t, "Opening: notepad\n", h.out.String())
}

func TestSearch_BuildsQueryURL(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.exec.Search(context.Background(), "go generics"))
	assert.Contains(t, h.rec.Calls(), "type https://www.google.com/search?q=go+generics")
	assert.Contains(t, h.out.String(), "Searching for: go generics")
}

func TestShortcut_Normalizes(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.exec.Shortcut(context.Background(), " Win + D "))
	assert.Equal(t, []string{"keys super+d"}, h.rec.Calls())

	assert.Error(t, h.exec.Shortcut(context.Background(), " + "))
}

func TestClose(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.exec.Close(context.Background(), "brave"))
	assert.Equal(t, []string{"kill brave"}, h.rec.Calls())
	assert.Equal(t, "Closing brave\n", h.out.String())
}

func TestWebsite_AddsScheme(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.exec.Website(context.Background(), "github.com"))
	require.NoError(t, h.exec.Website(context.Background(), "http://localhost:8080"))
	assert.Equal(t, []string{"open https://github.com", "open http://localhost:8080"}, h.rec.Calls())
}

func TestVolume(t *testing.T) {
	tests := []struct {
		name      string
		params    model.Params
		start     float64
		wantLevel float64
		wantMuted bool
		wantOut   string
		skipped   bool
	}{
		{name: "up", params: model.StringParams("up"), start: 0.5, wantLevel: 0.6, wantOut: "Volume increased to 60%"},
		{name: "up clamps", params: model.StringParams("turn it up"), start: 0.95, wantLevel: 1, wantOut: "Volume increased to 100%"},
		{name: "up with amount steps up", params: model.StringParams("turn the volume up by 20"), start: 0.6, wantLevel: 0.7, wantOut: "Volume increased to 70%"},
		{name: "down with amount steps down", params: model.StringParams("down 30"), start: 0.6, wantLevel: 0.5, wantOut: "Volume decreased to 50%"},
		{name: "down clamps", params: model.StringParams("down"), start: 0.05, wantLevel: 0, wantOut: "Volume decreased to 0%"},
		{name: "mute", params: model.StringParams("mute"), start: 0.5, wantLevel: 0.5, wantMuted: true, wantOut: "Volume muted"},
		{name: "unmute is not mute", params: model.StringParams("unmute"), start: 0.5, wantLevel: 0.5, wantOut: "Volume unmuted"},
		{name: "number", params: model.NumberParams(50), start: 0.2, wantLevel: 0.5, wantOut: "Volume set to 50%"},
		{name: "volume N", params: model.StringParams("volume 37"), start: 0.2, wantLevel: 0.37, wantOut: "Volume set to 37%"},
		{name: "set to N", params: model.StringParams("set to 0"), start: 0.2, wantLevel: 0, wantOut: "Volume set to 0%"},
		{name: "too high", params: model.NumberParams(150), start: 0.2, wantLevel: 0.2, wantOut: "Volume must be between 0 and 100", skipped: true},
		{name: "negative", params: model.StringParams("volume -5"), start: 0.2, wantLevel: 0.2, wantOut: "Volume must be between 0 and 100", skipped: true},
		{name: "no level", params: model.StringParams("volume"), start: 0.2, wantLevel: 0.2, wantOut: "Please specify a volume level (0-100)", skipped: true},
		{name: "unknown", params: model.StringParams("louder please"), start: 0.2, wantLevel: 0.2, wantOut: "Volume command not recognized", skipped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.audio().Level = tt.start

			err := h.exec.Volume(context.Background(), tt.params)
			if tt.skipped {
				assert.ErrorIs(t, err, registry.ErrSkipped)
				assert.Empty(t, h.rec.Calls(), "no OS call expected")
			} else {
				require.NoError(t, err)
			}
			assert.InDelta(t, tt.wantLevel, h.audio().Level, 1e-9)
			assert.Equal(t, tt.wantMuted, h.audio().Muted)
			assert.Contains(t, h.out.String(), tt.wantOut)
		})
	}
}

func TestVolume_OutOfRangeIsDistinguishable(t *testing.T) {
	h := newHarness(t, nil)
	err := h.exec.SetVolume(context.Background(), 101)
	assert.ErrorIs(t, err, ErrVolumeOutOfRange)
}

func TestShell_RequiresConfirmation(t *testing.T) {
	h := newHarness(t, nil)
	err := h.exec.Shell(context.Background(), "rm -rf ~/tmp")
	assert.ErrorIs(t, err, registry.ErrSkipped)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, h.rec.Calls())
	assert.Equal(t, "'rm -rf ~/tmp' not possible\n", h.out.String())

	h.out.Reset()
	h.prov.ProcessManager.(*fake.Processes).Output = []byte("done\n")
	require.NoError(t, h.exec.Shell(context.Background(), "echo done NOW"))
	assert.Equal(t, []string{"shell echo done NOW"}, h.rec.Calls())
	assert.Equal(t, "Executing: echo done NOW\ndone\n", h.out.String())
}

func TestPower_RequiresConfirmation(t *testing.T) {
	h := newHarness(t, nil)
	handlers := h.exec.Handlers()

	err := handlers[registry.Shutdown](context.Background(), model.StringParams(""))
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Empty(t, h.rec.Calls())

	require.NoError(t, handlers[registry.Restart](context.Background(), model.StringParams("restart now")))
	assert.Equal(t, []string{"power restart"}, h.rec.Calls())
}

func TestScreenshot_DefaultName(t *testing.T) {
	h := newHarness(t, nil)
	h.prov.Screenshotter.(*fake.Screen).SetImage([]byte("png"))

	require.NoError(t, h.exec.Screenshot(context.Background(), ""))
	want := filepath.Join(h.exec.cfg.ScreenshotDir, "screenshot_1700000000.png")
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "Screenshot saved as "+want+"\n", h.out.String())
}

func TestScreenshot_NamedAddsExtension(t *testing.T) {
	h := newHarness(t, nil)
	h.prov.Screenshotter.(*fake.Screen).SetImage([]byte("png"))
	name := filepath.Join(t.TempDir(), "shots", "desk")

	path, err := h.exec.SaveScreenshot(name)
	require.NoError(t, err)
	assert.Equal(t, name+".png", path)
	assert.FileExists(t, path)
}

func TestScreenshot_CaptureError(t *testing.T) {
	h := newHarness(t, nil)
	h.prov.Screenshotter.(*fake.Screen).Err = errors.New("no display")
	assert.Error(t, h.exec.Screenshot(context.Background(), ""))
}

func TestFindFile_ShortestThenLexicographic(t *testing.T) {
	h := newHarness(t, nil)
	a := t.TempDir()
	b := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, os.MkdirAll(b, 0o755))
	for _, p := range []string{
		filepath.Join(a, "Quarterly Report.pdf"),
		filepath.Join(a, "report.txt"),
		filepath.Join(a, "report.doc"),
		filepath.Join(b, "report.txt"),
		filepath.Join(a, "unrelated.txt"),
	} {
		require.NoError(t, os.WriteFile(p, nil, 0o600))
	}
	h.exec.cfg.SearchDirs = []string{a, b, filepath.Join(a, "missing")}
	h.exec.cfg.Extensions = []string{".txt", ".doc", ".pdf"}

	got, ok := h.exec.FindFile("REPORT")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(a, "report.doc"), got)

	_, ok = h.exec.FindFile("budget")
	assert.False(t, ok)
}

func TestOpenFile(t *testing.T) {
	h := newHarness(t, nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))
	h.exec.cfg.SearchDirs = []string{dir}

	require.NoError(t, h.exec.OpenFile(context.Background(), "notes"))
	assert.Equal(t, []string{"open " + filepath.Join(dir, "notes.txt")}, h.rec.Calls())
	assert.Equal(t, "Opened file: notes.txt\n", h.out.String())

	err := h.exec.OpenFile(context.Background(), "taxes")
	assert.ErrorIs(t, err, registry.ErrSkipped)
	assert.Contains(t, h.out.String(), "File 'taxes' not found in common directories")
}

func TestClickComponent(t *testing.T) {
	finder := &stubFinder{targets: map[string]model.ScreenTarget{"playbutton": {X: 5, Y: 6}}}
	h := newHarness(t, finder)

	require.NoError(t, h.exec.ClickComponent(context.Background(), "300, 400"))
	require.NoError(t, h.exec.ClickComponent(context.Background(), "playbutton"))
	assert.Equal(t, []string{
		"move 300,400", "down 300,400", "up 300,400",
		"move 5,6", "down 5,6", "up 5,6",
	}, h.rec.Calls())

	err := h.exec.ClickComponent(context.Background(), "artistcard")
	assert.ErrorIs(t, err, registry.ErrSkipped)
}

func TestClickComponent_NoFinder(t *testing.T) {
	h := newHarness(t, nil)
	err := h.exec.ClickComponent(context.Background(), "playbutton")
	require.Error(t, err)
	assert.NotErrorIs(t, err, registry.ErrSkipped)
}

func TestSpotify_FullFlow(t *testing.T) {
	finder := &stubFinder{targets: map[string]model.ScreenTarget{
		ComponentArtistCard: {X: 400, Y: 610},
		ComponentPlayButton: {X: 431, Y: 543},
	}}
	h := newHarness(t, finder)

	require.NoError(t, h.exec.Spotify(context.Background(), "mac demarco"))
	assert.Equal(t, []string{
		"open https://google.com",
		"keys ctrl+l",
		"type https://open.spotify.com/search/mac%20demarco",
		"keys enter",
		"move 400,610", "down 400,610", "up 400,610",
		"move 431,543", "down 431,543", "up 431,543",
	}, h.rec.Calls())
	assert.Equal(t, []string{ComponentArtistCard, ComponentPlayButton}, finder.asked)
	assert.Contains(t, h.sleeps, time.Second)
	assert.Contains(t, h.out.String(), "Searching Spotify for: mac demarco")
}

func TestSpotify_StopsWhenArtistCardMissing(t *testing.T) {
	finder := &stubFinder{}
	h := newHarness(t, finder)

	err := h.exec.Spotify(context.Background(), "nobody")
	assert.ErrorIs(t, err, registry.ErrSkipped)
	assert.Equal(t, []string{ComponentArtistCard}, finder.asked)
}

func TestMissingBackends(t *testing.T) {
	e := New(&platform.Provider{}, nil, config.ActionsConfig{}, nil, nil)
	assert.ErrorIs(t, e.Close(context.Background(), "x"), platform.ErrUnsupported)
	assert.ErrorIs(t, e.Type(context.Background(), "x"), platform.ErrUnsupported)
	assert.ErrorIs(t, e.SetVolume(context.Background(), 10), platform.ErrUnsupported)
}
