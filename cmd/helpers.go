package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/executor"
	"github.com/mj1618/desktop-agent/internal/interpreter"
	"github.com/mj1618/desktop-agent/internal/locator"
	"github.com/mj1618/desktop-agent/internal/planner"
	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/mj1618/desktop-agent/internal/session"
	"go.uber.org/zap"
)

// runtime is the wired set of components a command drives.
type runtime struct {
	provider    *platform.Provider
	locator     *locator.Locator
	executor    *executor.Executor
	interpreter *interpreter.Interpreter
	memory      *session.Memory
}

// newRuntime builds the desktop side of the agent. Transcript lines from
// the executor and interpreter go to out.
func newRuntime(cfg *config.Config, logger *zap.Logger, out io.Writer) (*runtime, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}
	if missing := provider.Missing(); len(missing) > 0 {
		logger.Warn("platform backends unavailable", zap.Strings("missing", missing))
	}

	ocr := locator.NewTesseract(cfg.OCR.Binary, cfg.OCR.Language, platform.ExecRunner{})
	loc := locator.New(provider.Screenshotter, ocr, cfg.Locator, logger.Named("locator"))
	exec := executor.New(provider, loc, cfg.Actions, logger.Named("executor"), out)

	reg, err := registry.New(exec.Handlers())
	if err != nil {
		return nil, fmt.Errorf("build action registry: %w", err)
	}

	return &runtime{
		provider:    provider,
		locator:     loc,
		executor:    exec,
		interpreter: interpreter.New(reg, cfg.Interpreter, logger.Named("interpreter"), out),
		memory:      newMemory(cfg, logger),
	}, nil
}

func newMemory(cfg *config.Config, logger *zap.Logger) *session.Memory {
	rules := session.Rules{Browsers: cfg.Actions.Browsers, Terminals: cfg.Actions.Terminals}
	return session.NewMemory(cfg.Memory.MaxInteractions, rules, logger.Named("session"))
}

// newPlanner builds the planner client for cfg.Planner.Mode.
func newPlanner(cfg *config.Config, logger *zap.Logger) (*planner.Client, error) {
	backend, err := planner.NewBackend(cfg.Planner)
	if err != nil {
		return nil, fmt.Errorf("planner backend: %w", err)
	}
	if cfg.Planner.Mode == config.ModeRemote && cfg.Planner.Remote.APIKey() == "" {
		logger.Warn("planner api key not set; every request will fail",
			zap.String("env", cfg.Planner.Remote.APIKeyEnv))
	}
	logger.Info("planner ready", zap.String("backend", backend.Name()), zap.String("proxy", cfg.Planner.Proxy))
	return planner.NewClient(backend, cfg.Planner, logger.Named("planner")), nil
}

// readInput returns the contents of path, or of stdin when path is "" or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	return os.ReadFile(config.ExpandPath(path))
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// kindNames lists every action kind, comma separated.
func kindNames() string {
	names := make([]string, len(registry.Kinds))
	for i, k := range registry.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
