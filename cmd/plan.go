package cmd

import (
	"strings"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/output"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <command...>",
	Short: "Show the plan the planner returns for a command",
	Long: `Send a command to the planner and print the plan it returns, without
executing anything. Useful for tuning the system prompt.

Example:
  desktop-agent plan open brave and go to youtube`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlanCommand,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().String("mode", "", "Planner backend: local, remote (default from config)")
}

func runPlanCommand(cmd *cobra.Command, args []string) error {
	cfg := *app.cfg
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		if mode != config.ModeLocal && mode != config.ModeRemote {
			return errInvalidMode(mode)
		}
		cfg.Planner.Mode = mode
	}

	client, err := newPlanner(&cfg, app.logger)
	if err != nil {
		return err
	}
	plan := client.Send(cmd.Context(), strings.Join(args, " "), newMemory(&cfg, app.logger))
	return output.Print(plan)
}
