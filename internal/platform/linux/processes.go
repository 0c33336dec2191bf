package linux

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// Processes implements platform.ProcessManager with standard userland tools.
type Processes struct {
	runner platform.Runner
}

// NewProcesses creates a new process manager.
func NewProcesses(runner platform.Runner) *Processes {
	return &Processes{runner: runner}
}

// Kill terminates processes by exact name. A trailing ".exe" is ignored so
// plans written for Windows still work. Finding no process is not an error.
func (p *Processes) Kill(ctx context.Context, name string) error {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".exe")
	if name == "" {
		return fmt.Errorf("kill: empty process name")
	}
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	_, err := p.runner.Run(ctx, nil, "pkill", "-x", name)
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() == 1 {
		return nil
	}
	if err != nil {
		return fmt.Errorf("kill %s: %w", name, err)
	}
	return nil
}

// Open hands target to xdg-open.
func (p *Processes) Open(ctx context.Context, target string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if _, err := p.runner.Run(ctx, nil, "xdg-open", target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

// Shell runs command with /bin/sh.
func (p *Processes) Shell(ctx context.Context, command string) ([]byte, error) {
	out, err := p.runner.Run(ctx, nil, "sh", "-c", command)
	if err != nil {
		return out, fmt.Errorf("shell: %w", err)
	}
	return out, nil
}

var systemctlVerbs = map[platform.PowerAction]string{
	platform.PowerShutdown:  "poweroff",
	platform.PowerRestart:   "reboot",
	platform.PowerSleep:     "suspend",
	platform.PowerHibernate: "hibernate",
}

// Power changes the power state through systemd.
func (p *Processes) Power(ctx context.Context, action platform.PowerAction) error {
	verb, ok := systemctlVerbs[action]
	if !ok {
		return fmt.Errorf("unknown power action %q", action)
	}
	if _, err := p.runner.Run(ctx, nil, "systemctl", verb); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}
