package cmd

import (
	"github.com/mj1618/desktop-agent/internal/server"
	"github.com/mj1618/desktop-agent/internal/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the agent's actions",
	Long: `Start a Model Context Protocol (MCP) server that exposes every action as a
tool, plus workflow, locate, components, capture and state. An external agent
can then drive the desktop without the built-in planner. Session state is
shared across tool calls.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  desktop-agent serve
  desktop-agent serve --transport streamable-http --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", server.TransportStdio, "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	transcript := server.NewTranscript()
	rt, err := newRuntime(app.cfg, app.logger, transcript)
	if err != nil {
		return err
	}

	srv := server.New(app.cfg.Server.Name, version.Version, server.Deps{
		Runner:     rt.interpreter,
		Finder:     rt.locator,
		Screen:     rt.provider.Screenshotter,
		Memory:     rt.memory,
		Transcript: transcript,
		Logger:     app.logger.Named("server"),
	})
	return srv.Serve(transport, port)
}
