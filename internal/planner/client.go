package planner

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"go.uber.org/zap"
)

// Context supplies what the planner knows beyond the new command.
type Context interface {
	Summary() string
	Messages() []model.Message
}

// Client builds planner requests and converts replies into plans.
type Client struct {
	backend    Backend
	promptFile string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient wraps backend. The system prompt is read from cfg's prompt file
// on every request.
func NewClient(backend Backend, cfg config.PlannerConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		backend:    backend,
		promptFile: cfg.SystemPromptFile,
		timeout:    cfg.Timeout,
		logger:     logger,
	}
}

// Messages assembles the chat transcript for command: the system prompt
// with the state summary, the recent history, then the command itself.
func (c *Client) Messages(command string, pc Context) []model.Message {
	system := c.systemPrompt()
	var history []model.Message
	if pc != nil {
		if summary := pc.Summary(); summary != "" {
			system = strings.TrimSpace(system + "\n\nCurrent system state: " + summary)
		}
		history = pc.Messages()
	}
	msgs := make([]model.Message, 0, len(history)+2)
	msgs = append(msgs, model.Message{Role: model.RoleSystem, Content: system})
	msgs = append(msgs, history...)
	msgs = append(msgs, model.Message{Role: model.RoleUser, Content: "Voice command: " + command})
	return msgs
}

// Send asks the backend for a plan. It never fails: backend errors yield
// the "API request failed" error plan and unusable replies yield the
// "Invalid response format" error plan.
func (c *Client) Send(ctx context.Context, command string, pc Context) model.Plan {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	log := c.logger.With(zap.String("backend", c.backend.Name()))

	start := time.Now()
	reply, err := c.backend.Complete(ctx, c.Messages(command, pc))
	if err != nil {
		log.Error("API request failed", zap.Error(err))
		return model.ErrorPlan(model.ReasonRequestFailed)
	}
	log.Debug("planner replied", zap.Duration("elapsed", time.Since(start)), zap.String("reply", reply))

	doc := ExtractJSON(reply)
	plan, err := model.ParsePlan([]byte(doc))
	if err != nil {
		log.Warn("invalid JSON response from planner", zap.Error(err), zap.String("content", doc))
		return model.ErrorPlan(model.ReasonInvalidResponse)
	}
	return plan
}

func (c *Client) systemPrompt() string {
	if c.promptFile == "" {
		return ""
	}
	data, err := os.ReadFile(config.ExpandPath(c.promptFile))
	if err != nil {
		c.logger.Warn("system prompt not readable", zap.String("path", c.promptFile), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(string(data))
}
