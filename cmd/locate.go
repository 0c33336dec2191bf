package cmd

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/locator"
	"github.com/mj1618/desktop-agent/internal/output"
	"github.com/mj1618/desktop-agent/internal/server"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate [component]",
	Short: "Find a configured UI component on screen",
	Long: `Find a component from the locator configuration on the current screen and
print its click point. Without arguments, list the configured components.

Examples:
  desktop-agent locate
  desktop-agent locate playbutton
  desktop-agent locate artistcard --wait --annotate /tmp/artist.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().Bool("wait", false, "Poll until the component appears or the locator timeout passes")
	locateCmd.Flags().String("annotate", "", "Write the screen with the match outlined to this PNG file")
}

func runLocate(cmd *cobra.Command, args []string) error {
	wait, _ := cmd.Flags().GetBool("wait")
	annotate, _ := cmd.Flags().GetString("annotate")

	rt, err := newRuntime(app.cfg, app.logger, os.Stderr)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return output.Print(rt.locator.Components())
	}

	name := strings.ToLower(strings.TrimSpace(args[0]))
	if !rt.locator.Has(name) {
		return fmt.Errorf("unknown component %q (known: %s)", name, strings.Join(rt.locator.Components(), ", "))
	}
	if wait {
		if _, ok := rt.locator.Wait(cmd.Context(), name); !ok {
			return fmt.Errorf("component %q did not appear before the timeout", name)
		}
	}
	m, ok := rt.locator.Find(cmd.Context(), name)
	if !ok {
		return fmt.Errorf("component %q not found on screen", name)
	}

	if annotate != "" {
		if err := writeAnnotated(rt.locator, config.ExpandPath(annotate), m); err != nil {
			return err
		}
	}
	return output.Print(server.LocateResult{
		Component: m.Component,
		X:         m.Target.X,
		Y:         m.Target.Y,
		Score:     m.Score,
		Source:    m.Source,
	})
}

func writeAnnotated(l *locator.Locator, path string, m locator.Match) error {
	frame, err := l.Frame()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, locator.Annotate(frame.Image, m)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
