// Package server exposes the agent's actions as Model Context Protocol tools.
package server

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/desktop-agent/internal/interpreter"
	"github.com/mj1618/desktop-agent/internal/locator"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/mj1618/desktop-agent/internal/session"
	"go.uber.org/zap"
)

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Runner executes a plan.
type Runner interface {
	Run(ctx context.Context, plan model.Plan) (interpreter.Report, error)
}

// Finder locates named components on screen.
type Finder interface {
	Components() []string
	Find(ctx context.Context, name string) (locator.Match, bool)
	Frame() (*locator.Frame, error)
}

// Transcript collects the user-facing lines printed while a tool runs.
type Transcript struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewTranscript() *Transcript { return &Transcript{} }

func (t *Transcript) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Write(p)
}

// Take returns the collected lines and clears the buffer.
func (t *Transcript) Take() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := strings.TrimRight(t.buf.String(), "\n")
	t.buf.Reset()
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Deps are the components the server drives. Runner and the executor behind
// it must write their transcript to Transcript.
type Deps struct {
	Runner     Runner
	Finder     Finder
	Screen     platform.Screenshotter
	Memory     *session.Memory
	Transcript *Transcript
	Logger     *zap.Logger
}

// Server wraps the MCP server. Tool calls are serialized because they share
// one mouse, keyboard and session.
type Server struct {
	mu   sync.Mutex
	deps Deps
	mcp  *mcpserver.MCPServer
}

// New creates the server and registers every tool.
func New(name, version string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Transcript == nil {
		deps.Transcript = NewTranscript()
	}
	s := &Server{deps: deps}
	s.mcp = mcpserver.NewMCPServer(name, version, mcpserver.WithToolCapabilities(false))
	s.mcp.AddTools(s.tools()...)
	return s
}

// Serve blocks serving the given transport.
func (s *Server) Serve(transport string, port int) error {
	s.deps.Logger.Info("mcp server starting", zap.String("transport", transport), zap.Int("port", port))
	switch transport {
	case TransportStdio:
		return mcpserver.ServeStdio(s.mcp)
	case TransportHTTP:
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(fmt.Sprintf(":%d", port))
	default:
		return fmt.Errorf("unsupported transport: %s (use %s or %s)", transport, TransportStdio, TransportHTTP)
	}
}

// ToolName is the MCP tool name for an action kind.
func ToolName(k registry.Kind) string { return strings.ToLower(string(k)) }

func (s *Server) tools() []mcpserver.ServerTool {
	var tools []mcpserver.ServerTool
	for _, k := range registry.Kinds {
		tools = append(tools, mcpserver.ServerTool{
			Tool: mcp.NewTool(ToolName(k),
				mcp.WithDescription(k.Description()),
				mcp.WithString("parameters", mcp.Description("Action parameters, as the planner would send them")),
			),
			Handler: s.actionHandler(k),
		})
	}

	tools = append(tools,
		mcpserver.ServerTool{
			Tool: mcp.NewTool("workflow",
				mcp.WithDescription("Run several actions in order. Each step is {command, parameters, delay}; delay is in seconds."),
				mcp.WithArray("steps", mcp.Description("Array of step objects"), mcp.Required()),
			),
			Handler: s.handleWorkflow,
		},
		mcpserver.ServerTool{
			Tool: mcp.NewTool("locate",
				mcp.WithDescription("Find a configured UI component on screen and return its click point"),
				mcp.WithString("component", mcp.Description("Component name"), mcp.Required()),
				mcp.WithBoolean("annotate", mcp.Description("Return the screen with the match drawn on it")),
			),
			Handler: s.handleLocate,
		},
		mcpserver.ServerTool{
			Tool: mcp.NewTool("components",
				mcp.WithDescription("List the UI components the locator knows about"),
			),
			Handler: s.handleComponents,
		},
		mcpserver.ServerTool{
			Tool: mcp.NewTool("capture",
				mcp.WithDescription("Capture the full screen and return it as an image"),
				mcp.WithString("format", mcp.Description("Image format: png, jpg (default: png)")),
				mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default: 80)")),
			),
			Handler: s.handleCapture,
		},
		mcpserver.ServerTool{
			Tool: mcp.NewTool("state",
				mcp.WithDescription("Show what the agent believes is open on the desktop"),
				mcp.WithBoolean("clear", mcp.Description("Forget the session state and history first")),
			),
			Handler: s.handleState,
		},
	)
	return tools
}
