package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/mj1618/desktop-agent/internal/registry"
	"go.uber.org/zap"
)

// ErrNotConfirmed is returned for privileged actions whose parameters lack
// the confirmation token.
var ErrNotConfirmed = errors.New("confirmation token missing")

// Confirmed reports whether text contains the confirmation token,
// case-insensitively.
func (e *Executor) Confirmed(text string) bool {
	token := strings.ToLower(strings.TrimSpace(e.cfg.ConfirmToken))
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), token)
}

// Screenshot saves a PNG of the screen to filename, or to
// screenshot_<unix>.png in the screenshot directory when filename is empty.
func (e *Executor) Screenshot(_ context.Context, filename string) error {
	path, err := e.SaveScreenshot(filename)
	if err != nil {
		return err
	}
	e.say("Screenshot saved as %s", path)
	e.logger.Info("screenshot saved", zap.String("path", path))
	return nil
}

// SaveScreenshot captures the screen and writes it, returning the path.
func (e *Executor) SaveScreenshot(filename string) (string, error) {
	s, err := e.screen()
	if err != nil {
		return "", err
	}
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = filepath.Join(config.ExpandPath(e.cfg.ScreenshotDir), fmt.Sprintf("screenshot_%d.png", e.now().Unix()))
	} else {
		filename = config.ExpandPath(filename)
		if filepath.Ext(filename) == "" {
			filename += ".png"
		}
	}
	data, err := s.CaptureScreen(platform.ScreenshotOptions{Format: "png"})
	if err != nil {
		return "", fmt.Errorf("capture screen: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return filename, nil
}

// Shell runs command through the host shell when it carries the
// confirmation token. Without it nothing runs and the step is skipped.
func (e *Executor) Shell(ctx context.Context, command string) error {
	if !e.Confirmed(command) {
		e.say("'%s' not possible", command)
		e.logger.Warn("shell command refused", zap.String("command", command))
		return fmt.Errorf("%w: %w", registry.ErrSkipped, ErrNotConfirmed)
	}
	procs, err := e.processes()
	if err != nil {
		return err
	}
	e.say("Executing: %s", command)
	e.logger.Info("executing shell command", zap.String("command", command))
	out, err := procs.Shell(ctx, command)
	if len(out) > 0 {
		_, _ = e.out.Write(out)
	}
	return err
}

var powerMessages = map[platform.PowerAction]string{
	platform.PowerShutdown:  "Shutting down",
	platform.PowerRestart:   "Restarting",
	platform.PowerSleep:     "Going to sleep",
	platform.PowerHibernate: "Hibernating",
}

// Power changes the machine's power state when params carry the
// confirmation token.
func (e *Executor) Power(ctx context.Context, action platform.PowerAction, params string) error {
	if !e.Confirmed(params) {
		e.say("'%s' not possible", action)
		e.logger.Warn("power action refused", zap.String("action", string(action)))
		return fmt.Errorf("%w: %w", registry.ErrSkipped, ErrNotConfirmed)
	}
	procs, err := e.processes()
	if err != nil {
		return err
	}
	e.say("%s...", powerMessages[action])
	e.logger.Info("power action", zap.String("action", string(action)))
	return procs.Power(ctx, action)
}

// FindFile searches the configured directories for entries whose name
// contains name (case-insensitively) before one of the configured
// extensions. The shortest path wins; ties go to the lexicographically
// smaller path.
func (e *Executor) FindFile(name string) (string, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return "", false
	}
	exts := e.cfg.Extensions
	if len(exts) == 0 {
		exts = []string{""}
	}

	seen := make(map[string]bool)
	var found []string
	for _, dir := range e.cfg.SearchDirs {
		dir = config.ExpandPath(dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			base := strings.ToLower(entry.Name())
			for _, ext := range exts {
				ext = strings.ToLower(ext)
				if !strings.HasSuffix(base, ext) || !strings.Contains(base[:len(base)-len(ext)], query) {
					continue
				}
				p := filepath.Join(dir, entry.Name())
				if !seen[p] {
					seen[p] = true
					found = append(found, p)
				}
				break
			}
		}
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Slice(found, func(i, j int) bool {
		if len(found[i]) != len(found[j]) {
			return len(found[i]) < len(found[j])
		}
		return found[i] < found[j]
	})
	return found[0], true
}

// OpenFile finds a file by name and opens it with the default application.
func (e *Executor) OpenFile(ctx context.Context, name string) error {
	e.logger.Info("searching for file", zap.String("name", name))
	path, ok := e.FindFile(name)
	if !ok {
		e.say("File '%s' not found in common directories", name)
		e.say("Try being more specific with the filename")
		e.logger.Warn("file not found", zap.String("name", name))
		return registry.Skipped("file %q not found", name)
	}
	procs, err := e.processes()
	if err != nil {
		return err
	}
	if err := procs.Open(ctx, path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	e.say("Opened file: %s", filepath.Base(path))
	e.logger.Info("opened file", zap.String("path", path))
	return nil
}
