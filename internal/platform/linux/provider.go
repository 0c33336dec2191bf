package linux

import "github.com/mj1618/desktop-agent/internal/platform"

// NewProvider assembles the Linux backends around one runner.
func NewProvider(runner platform.Runner) *platform.Provider {
	return &platform.Provider{
		Inputter:        NewInputter(runner),
		Screenshotter:   NewScreenshotter(runner),
		AudioController: NewAudio(runner),
		ProcessManager:  NewProcesses(runner),
		RunDialogKeys:   []string{"alt", "f2"},
		PrimaryModifier: "ctrl",
	}
}
