//go:build linux

package linux

import "github.com/mj1618/desktop-agent/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return NewProvider(platform.ExecRunner{}), nil
	}
}
