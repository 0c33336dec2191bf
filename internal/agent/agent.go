// Package agent runs the interactive loop: read a command, ask the planner
// for a plan, execute it and fold the outcome into the session.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mj1618/desktop-agent/internal/interpreter"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/planner"
	"github.com/mj1618/desktop-agent/internal/session"
	"go.uber.org/zap"
)

// Separator is printed after every handled command.
var Separator = strings.Repeat("-", 50)

// Planner produces a plan for a command.
type Planner interface {
	Send(ctx context.Context, command string, pc planner.Context) model.Plan
}

// Runner executes a plan.
type Runner interface {
	Run(ctx context.Context, plan model.Plan) (interpreter.Report, error)
}

// Agent wires input, planner, interpreter and session memory together.
type Agent struct {
	input   Input
	planner Planner
	runner  Runner
	memory  *session.Memory
	logger  *zap.Logger
	out     io.Writer
}

// New creates an agent. memory must not be nil.
func New(input Input, p Planner, r Runner, memory *session.Memory, logger *zap.Logger, out io.Writer) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{input: input, planner: p, runner: r, memory: memory, logger: logger, out: out}
}

// IsExit reports whether text asks the agent to stop.
func IsExit(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "exit") || strings.Contains(lower, "quit")
}

// Run loops until the user exits, input ends or ctx is cancelled. Only
// cancellation and input failures are returned as errors.
func (a *Agent) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "AI Computer Agent Started!")
	fmt.Fprintln(a.out, "Say 'exit' to quit")
	fmt.Fprintln(a.out, Separator)
	a.logger.Info("agent started")

	for {
		text, err := a.input.Read(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out, "Goodbye!")
			a.logger.Info("input closed")
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("read input: %w", err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if IsExit(text) {
			fmt.Fprintln(a.out, "Goodbye!")
			a.logger.Info("exited")
			return nil
		}

		if _, err := a.Handle(ctx, text); err != nil {
			return err
		}
		fmt.Fprintln(a.out, Separator)
	}
}

// Handle plans and executes one command. Steps that succeeded update the
// session state.
func (a *Agent) Handle(ctx context.Context, command string) (interpreter.Report, error) {
	fmt.Fprintf(a.out, "You said: %s\n", command)
	a.logger.Info("command received", zap.String("command", command))

	plan := a.planner.Send(ctx, command, a.memory)
	a.memory.AddUser(command)
	a.memory.AddAssistant(plan)

	report, err := a.runner.Run(ctx, plan)
	a.memory.Apply(report.Succeeded())
	a.logger.Debug("plan finished",
		zap.String("run_id", report.RunID),
		zap.Bool("ok", report.OK),
		zap.String("state", a.memory.Summary()),
	)
	return report, err
}
