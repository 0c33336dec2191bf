package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/desktop-agent/internal/agent"
	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/voice"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive agent",
	Long: `Start the agent loop: read a command (typed or spoken), ask the planner for a
plan, execute it and repeat until "exit" or "quit".

When --mode or --input is not given and stdin is a terminal, you are asked to
choose; otherwise the configured defaults apply.

Examples:
  desktop-agent run
  desktop-agent run --mode remote --input text`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("mode", "", "Planner backend: local, remote")
	runCmd.Flags().String("input", "", "Input method: text, voice")
}

func errInvalidMode(mode string) error {
	return fmt.Errorf("invalid mode %q (use %s or %s)", mode, config.ModeLocal, config.ModeRemote)
}

// choose returns the flag value, asks when interactive, or falls back to def.
func choose(cmd *cobra.Command, flag, title string, options []string, def string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	if !isTerminal(os.Stdin) {
		return def, nil
	}
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultOption(def).
		Show(title)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg := *app.cfg
	logger := app.logger

	mode, err := choose(cmd, "mode", "Planner backend", []string{config.ModeLocal, config.ModeRemote}, cfg.Planner.Mode)
	if err != nil {
		return err
	}
	if mode != config.ModeLocal && mode != config.ModeRemote {
		return errInvalidMode(mode)
	}
	cfg.Planner.Mode = mode

	method, err := choose(cmd, "input", "Input method", []string{config.InputText, config.InputVoice}, cfg.Input.Method)
	if err != nil {
		return err
	}

	client, err := newPlanner(&cfg, logger)
	if err != nil {
		return err
	}

	var in agent.Input
	switch method {
	case config.InputText:
		in = agent.NewTextInput(os.Stdin, os.Stdout, cfg.Input.Prompt)
	case config.InputVoice:
		l, err := voice.NewListener(cfg.Voice, logger.Named("voice"), os.Stdout)
		if err != nil {
			return err
		}
		in = agent.NewVoiceInput(l)
	default:
		return fmt.Errorf("invalid input method %q (use %s or %s)", method, config.InputText, config.InputVoice)
	}
	defer in.Close()

	rt, err := newRuntime(&cfg, logger, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.Printf("Planner: %s, input: %s\n", mode, method)
	err = agent.New(in, client, rt.interpreter, rt.memory, logger.Named("agent"), os.Stdout).Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nGoodbye!")
		return nil
	}
	return err
}
