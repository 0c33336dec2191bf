package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/desktop-agent/internal/interpreter"
	"github.com/mj1618/desktop-agent/internal/locator"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/platform"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/mj1618/desktop-agent/internal/session"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RunResult is the response of action and workflow tools.
type RunResult struct {
	interpreter.Report `yaml:",inline"`
	Transcript         []string `yaml:"transcript,omitempty"`
	State              string   `yaml:"state,omitempty"`
}

// LocateResult is the response of the locate tool.
type LocateResult struct {
	Component string  `yaml:"component" json:"component"`
	X         int     `yaml:"x"         json:"x"`
	Y         int     `yaml:"y"         json:"y"`
	Score     float64 `yaml:"score"     json:"score"`
	Source    string  `yaml:"source"    json:"source"`
}

// StateResult is the response of the state tool.
type StateResult struct {
	session.Stats `yaml:",inline"`
	Summary       string `yaml:"summary"`
}

func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

func (s *Server) actionHandler(k registry.Kind) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := request.GetString("parameters", "")
		return s.run(ctx, model.NewCommandPlan(string(k), model.StringParams(params))), nil
	}
}

func (s *Server) handleWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps, ok := request.GetArguments()["steps"]
	if !ok {
		return mcp.NewToolResultError("steps parameter is required"), nil
	}
	if _, ok := steps.([]interface{}); !ok {
		return mcp.NewToolResultError("steps must be an array"), nil
	}
	doc, err := json.Marshal(map[string]interface{}{"workflow": steps})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	plan, err := model.ParsePlan(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid workflow: %v", err)), nil
	}
	return s.run(ctx, plan), nil
}

// run executes plan under the server lock and folds succeeded steps into
// the session.
func (s *Server) run(ctx context.Context, plan model.Plan) *mcp.CallToolResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deps.Transcript.Take()
	report, err := s.deps.Runner.Run(ctx, plan)
	res := RunResult{Report: report, Transcript: s.deps.Transcript.Take()}
	if s.deps.Memory != nil {
		s.deps.Memory.Apply(report.Succeeded())
		res.State = s.deps.Memory.Summary()
	}

	s.deps.Logger.Info("tool run finished",
		zap.String("run_id", report.RunID),
		zap.Bool("ok", report.OK),
		zap.Int("steps", len(report.Steps)),
	)
	switch {
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("%v\n%s", err, toText(res)))
	case !report.OK:
		return mcp.NewToolResultError(toText(res))
	}
	return mcp.NewToolResultText(toText(res))
}

func (s *Server) handleLocate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("component", "")
	if name == "" {
		return mcp.NewToolResultError("component parameter is required"), nil
	}
	if s.deps.Finder == nil {
		return mcp.NewToolResultError("locator not configured"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	known := s.deps.Finder.Components()
	if !contains(known, name) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown component %q (known: %s)", name, strings.Join(known, ", "))), nil
	}
	m, ok := s.deps.Finder.Find(ctx, name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("component %q not found on screen", name)), nil
	}
	text := toText(LocateResult{
		Component: m.Component,
		X:         m.Target.X,
		Y:         m.Target.Y,
		Score:     m.Score,
		Source:    m.Source,
	})
	if !request.GetBool("annotate", false) {
		return mcp.NewToolResultText(text), nil
	}

	frame, err := s.deps.Finder.Frame()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, locator.Annotate(frame.Image, m)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode annotated screen: %v", err)), nil
	}
	return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"), nil
}

func (s *Server) handleComponents(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Finder == nil {
		return mcp.NewToolResultError("locator not configured"), nil
	}
	return mcp.NewToolResultText(toText(s.deps.Finder.Components())), nil
}

func (s *Server) handleCapture(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := request.GetString("format", "png")
	quality := request.GetInt("quality", 80)

	if s.deps.Screen == nil {
		return mcp.NewToolResultError("screenshot not supported on this platform"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.deps.Screen.CaptureScreen(platform.ScreenshotOptions{Format: format, Quality: quality})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mimeType := "image/png"
	if format == "jpg" || format == "jpeg" {
		mimeType = "image/jpeg"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: mimeType,
			},
		},
	}, nil
}

func (s *Server) handleState(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Memory == nil {
		return mcp.NewToolResultError("session memory not configured"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if request.GetBool("clear", false) {
		s.deps.Memory.Clear()
	}
	return mcp.NewToolResultText(toText(StateResult{
		Stats:   s.deps.Memory.Stats(),
		Summary: s.deps.Memory.Summary(),
	})), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
