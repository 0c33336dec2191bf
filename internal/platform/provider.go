package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	Inputter        Inputter
	Screenshotter   Screenshotter
	AudioController AudioController
	ProcessManager  ProcessManager

	// RunDialogKeys is the chord that opens the OS "run" affordance
	// (launcher, spotlight, run box).
	RunDialogKeys []string
	// PrimaryModifier is the modifier used for application shortcuts such
	// as focusing the address bar: "ctrl" on Linux, "cmd" on macOS.
	PrimaryModifier string
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("desktop-agent is not supported on %s/%s; supported: darwin, linux", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/darwin/init.go and internal/platform/linux/init.go.
var NewProviderFunc func() (*Provider, error)

// RequestPermissionsFunc is set by platform-specific packages via init().
// It triggers OS permission prompts (e.g. screen recording) at startup.
var RequestPermissionsFunc func()

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// Missing lists the backends the provider does not implement.
func (p *Provider) Missing() []string {
	var missing []string
	if p.Inputter == nil {
		missing = append(missing, "input")
	}
	if p.Screenshotter == nil {
		missing = append(missing, "screenshot")
	}
	if p.AudioController == nil {
		missing = append(missing, "audio")
	}
	if p.ProcessManager == nil {
		missing = append(missing, "process")
	}
	return missing
}
