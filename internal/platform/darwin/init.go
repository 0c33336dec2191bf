//go:build darwin && cgo

package darwin

import "github.com/mj1618/desktop-agent/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		p := NewProvider(platform.ExecRunner{})
		p.Inputter = NewInputter()
		return p, nil
	}
	platform.RequestPermissionsFunc = RequestPermissions
}
