package cmd

import (
	"fmt"
	"strings"

	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <action> [parameters...]",
	Short: "Execute a single action",
	Long: `Execute one action directly, without asking the planner. Remaining
arguments are joined with spaces and passed as the action's parameters.

Examples:
  desktop-agent exec Open notepad
  desktop-agent exec Volume 40
  desktop-agent exec Shortcut ctrl+shift+t
  desktop-agent exec Click playbutton`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	kind, ok := registry.ParseKind(args[0])
	if !ok {
		return fmt.Errorf("unknown action %q (available: %s)", args[0], kindNames())
	}
	params := model.StringParams(strings.Join(args[1:], " "))
	return runPlan(cmd, model.NewCommandPlan(string(kind), params))
}
