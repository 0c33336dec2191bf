package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/observability"
	"github.com/mj1618/desktop-agent/internal/output"
	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/mj1618/desktop-agent/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "desktop-agent",
	Short: "Control the desktop with spoken or typed commands",
	Long: `An agent that turns spoken or typed commands into desktop actions.

Each command is sent to a language model that answers with a JSON plan of
actions (open an app, type text, change the volume, click a button found on
screen, ...). The plan is then executed step by step.`,
	SilenceUsage: true,
}

// app holds what PersistentPreRunE loaded for the running command.
var app struct {
	cfg     *config.Config
	logger  *zap.Logger
	cleanup func()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./desktop-agent.yaml, then ~/.config/desktop-agent/config.yaml)")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("log-level", "", "Console log level (overrides logger.console_level)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if platform.RequestPermissionsFunc != nil {
			platform.RequestPermissionsFunc()
		}

		// Use the root persistent flag directly to avoid conflicts with
		// subcommand local flags (e.g. screenshot --format png/jpg).
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
			cfg.Logger.ConsoleLevel = level
		}

		logger, cleanup, err := observability.NewLogger(cfg.Logger, zapcore.Lock(os.Stderr))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.cfg, app.logger, app.cleanup = cfg, logger, cleanup
		logger.Debug("command starting", zap.String("command", cmd.CommandPath()), zap.String("version", version.Version))
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.cleanup != nil {
			app.cleanup()
		}
	}
}
