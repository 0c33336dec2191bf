// Package interpreter executes plans step by step through the command
// registry.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/registry"
	"go.uber.org/zap"
)

// Status is the outcome of one step.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusUnknown   Status = "unknown"
	StatusCancelled Status = "cancelled"
)

// StepResult is the outcome of a single step.
type StepResult struct {
	Index      int           `yaml:"index"             json:"index"`
	Command    string        `yaml:"command"           json:"command"`
	Kind       registry.Kind `yaml:"kind,omitempty"    json:"kind,omitempty"`
	Parameters string        `yaml:"parameters"        json:"parameters"`
	Status     Status        `yaml:"status"            json:"status"`
	Error      string        `yaml:"error,omitempty"   json:"error,omitempty"`
	Elapsed    string        `yaml:"elapsed"           json:"elapsed"`

	step model.Step
}

// Report summarizes one plan run.
type Report struct {
	RunID   string       `yaml:"run_id"  json:"run_id"`
	OK      bool         `yaml:"ok"      json:"ok"`
	Elapsed string       `yaml:"elapsed" json:"elapsed"`
	Steps   []StepResult `yaml:"steps"   json:"steps"`
}

// Succeeded returns the steps that completed successfully, with their
// command names canonicalized to the registry kind.
func (r Report) Succeeded() []model.Step {
	var steps []model.Step
	for _, s := range r.Steps {
		if s.Status != StatusSucceeded {
			continue
		}
		st := s.step
		st.Command = string(s.Kind)
		steps = append(steps, st)
	}
	return steps
}

// Count returns the number of steps with the given status.
func (r Report) Count(status Status) int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Interpreter runs plans.
type Interpreter struct {
	registry *registry.Registry
	cfg      config.InterpreterConfig
	logger   *zap.Logger
	out      io.Writer

	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

// New creates an interpreter that writes transcript lines to out.
func New(reg *registry.Registry, cfg config.InterpreterConfig, logger *zap.Logger, out io.Writer) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Interpreter{
		registry: reg,
		cfg:      cfg,
		logger:   logger,
		out:      out,
		sleep:    sleepContext,
		newID:    uuid.NewString,
	}
}

// Run executes every step of plan in order. Failing steps are logged and
// execution continues; only cancellation of ctx stops the run early, in
// which case the partial report and ctx.Err() are returned.
func (in *Interpreter) Run(ctx context.Context, plan model.Plan) (Report, error) {
	start := time.Now()
	report := Report{RunID: in.newID()}
	log := in.logger.With(zap.String("run_id", report.RunID))

	if plan.IsError() {
		log.Warn("planner returned an error plan", zap.String("reason", plan.Parameters.String()))
	}

	steps := plan.Steps()
	log.Debug("running plan", zap.Int("steps", len(steps)), zap.Bool("workflow", plan.IsWorkflow()))

	finish := func() {
		report.Elapsed = time.Since(start).Round(time.Millisecond).String()
		report.OK = report.Count(StatusFailed) == 0 && report.Count(StatusCancelled) == 0
	}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			finish()
			return report, err
		}
		res := in.runStep(ctx, log, i, step)
		report.Steps = append(report.Steps, res)
		if res.Status == StatusCancelled {
			finish()
			return report, ctx.Err()
		}

		delay, declared := step.DelayDuration()
		if !declared && i < len(steps)-1 {
			delay = in.cfg.DefaultDelay
		}
		if delay > 0 {
			log.Debug("waiting before next step", zap.Int("index", i), zap.Duration("delay", delay))
			if err := in.sleep(ctx, delay); err != nil {
				finish()
				return report, err
			}
		}
	}
	finish()
	return report, nil
}

func (in *Interpreter) runStep(ctx context.Context, log *zap.Logger, i int, step model.Step) (res StepResult) {
	start := time.Now()
	params := step.Parameters.String()
	res = StepResult{Index: i, Command: step.Command, Parameters: params, step: step}
	defer func() { res.Elapsed = time.Since(start).Round(time.Millisecond).String() }()

	name := strings.ToLower(step.Command)
	fmt.Fprintf(in.out, "Executing: %s with parameters: %s\n", name, params)
	log = log.With(zap.Int("index", i), zap.String("command", step.Command))
	log.Info("executing step", zap.String("parameters", params))

	kind, handler, ok := in.registry.Lookup(step.Command)
	if !ok {
		fmt.Fprintf(in.out, "Unknown command: %s\n", name)
		log.Warn("unknown command")
		res.Status = StatusUnknown
		return res
	}
	res.Kind = kind

	err := in.invoke(ctx, handler, step.Parameters)
	switch {
	case err == nil:
		res.Status = StatusSucceeded
	case ctx.Err() != nil:
		res.Status = StatusCancelled
		res.Error = ctx.Err().Error()
		log.Info("step cancelled", zap.Error(ctx.Err()))
	case errors.Is(err, registry.ErrSkipped):
		res.Status = StatusSkipped
		res.Error = err.Error()
		log.Info("step skipped", zap.String("reason", err.Error()))
	default:
		res.Status = StatusFailed
		res.Error = err.Error()
		log.Error("step failed", zap.Error(err))
		fmt.Fprintln(in.out, "Error, check logs")
	}
	return res
}

// invoke runs handler under the per-step timeout on the calling goroutine.
// Handlers observe the timeout through their context; a step never outlives
// its call, so the next step cannot start while it is still running.
func (in *Interpreter) invoke(ctx context.Context, handler registry.Handler, params model.Params) (err error) {
	stepCtx := ctx
	if in.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, in.cfg.StepTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	err = handler(stepCtx, params)
	if err != nil && ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("step timed out after %s: %w", in.cfg.StepTimeout, err)
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
