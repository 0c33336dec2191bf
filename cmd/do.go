package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/desktop-agent/internal/interpreter"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/output"
	"github.com/spf13/cobra"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute a workflow of actions",
	Long: `Execute a workflow read from stdin (or --file) without asking the planner.

The input is YAML or JSON: either a plan document as the planner would send
it, or a list of steps. Steps run in order; a failing step is reported and the
rest still run. Transcript lines go to stderr, the report to stdout.

Example:
  desktop-agent do <<'EOF'
  - command: Open
    parameters: brave
    delay: 3
  - Website: https://news.ycombinator.com
  - Volume: 30
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().StringP("file", "f", "", "Read the workflow from this file instead of stdin")
	doCmd.Flags().Bool("dry-run", false, "Print the parsed plan without executing it")
}

func runDo(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	data, err := readInput(path)
	if err != nil {
		return err
	}
	plan, err := ParseWorkflow(data)
	if err != nil {
		return err
	}
	if dryRun {
		return output.Print(plan)
	}
	return runPlan(cmd, plan)
}

// runPlan executes plan on a fresh runtime and prints the report.
func runPlan(cmd *cobra.Command, plan model.Plan) error {
	rt, err := newRuntime(app.cfg, app.logger, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := rt.interpreter.Run(ctx, plan)
	if err := output.Print(report); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if !report.OK {
		return fmt.Errorf("%d of %d steps failed", report.Count(interpreter.StatusFailed), len(report.Steps))
	}
	return nil
}
