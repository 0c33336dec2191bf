package darwin

import "github.com/mj1618/desktop-agent/internal/platform"

// NewProvider assembles the exec-based macOS backends. The CoreGraphics
// inputter is attached by init when CGo is available.
func NewProvider(runner platform.Runner) *platform.Provider {
	return &platform.Provider{
		Screenshotter:   NewScreenshotter(runner),
		AudioController: NewAudio(runner),
		ProcessManager:  NewProcesses(runner),
		RunDialogKeys:   []string{"cmd", "space"},
		PrimaryModifier: "cmd",
	}
}
