package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot [filename]",
	Short: "Capture a screenshot",
	Long: `Capture the primary display. Without a filename the image is saved to the
configured screenshot directory as screenshot_<unix-time>.png.

Examples:
  desktop-agent screenshot
  desktop-agent screenshot ~/Desktop/before
  desktop-agent screenshot --base64 --format jpg --quality 60`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().Bool("base64", false, "Write the image to stdout as base64 instead of a file")
	screenshotCmd.Flags().String("format", "png", "Image format for --base64: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	asBase64, _ := cmd.Flags().GetBool("base64")

	rt, err := newRuntime(app.cfg, app.logger, os.Stderr)
	if err != nil {
		return err
	}

	if !asBase64 {
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		path, err := rt.executor.SaveScreenshot(name)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	if rt.provider.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported on this platform")
	}
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")
	data, err := rt.provider.Screenshotter.CaptureScreen(platform.ScreenshotOptions{Format: format, Quality: quality})
	if err != nil {
		return err
	}

	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
