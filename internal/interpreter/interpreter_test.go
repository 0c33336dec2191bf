package interpreter

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	in     *Interpreter
	out    *bytes.Buffer
	logs   *observer.ObservedLogs
	calls  []string
	sleeps []time.Duration
}

func newFixture(t *testing.T, cfg config.InterpreterConfig, overrides map[registry.Kind]registry.Handler) *fixture {
	t.Helper()
	f := &fixture{out: &bytes.Buffer{}}
	handlers := make(map[registry.Kind]registry.Handler, len(registry.Kinds))
	for _, k := range registry.Kinds {
		k := k
		handlers[k] = func(_ context.Context, p model.Params) error {
			f.calls = append(f.calls, string(k)+":"+p.String())
			return nil
		}
	}
	for k, h := range overrides {
		handlers[k] = h
	}
	reg, err := registry.New(handlers)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs
	f.in = New(reg, cfg, zap.New(core), f.out)
	f.in.newID = func() string { return "run-1" }
	f.in.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	}
	return f
}

func delay(s float64) *float64 { return &s }

func TestRun_SingleCommand(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{DefaultDelay: 10 * time.Second}, nil)

	report, err := f.in.Run(context.Background(), model.NewCommandPlan("Open", model.StringParams("notepad")))
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)
	assert.True(t, report.OK)
	require.Len(t, report.Steps, 1)
	assert.Equal(t, StatusSucceeded, report.Steps[0].Status)
	assert.Equal(t, registry.Open, report.Steps[0].Kind)
	assert.Equal(t, []string{"Open:notepad"}, f.calls)
	assert.Empty(t, f.sleeps, "no delay after the last step")
	assert.Equal(t, "Executing: open with parameters: notepad\n", f.out.String())
}

func TestRun_WorkflowDelays(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{DefaultDelay: 10 * time.Second}, nil)
	plan := model.NewWorkflowPlan([]model.Step{
		{Command: "Open", Parameters: model.StringParams("brave")},
		{Command: "Website", Parameters: model.StringParams("https://example.com"), Delay: delay(2)},
		{Command: "Type", Parameters: model.StringParams("hello")},
		{Command: "Shortcut", Parameters: model.StringParams("enter"), Delay: delay(0.5)},
	})

	report, err := f.in.Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Count(StatusSucceeded))
	assert.Equal(t, []time.Duration{
		10 * time.Second,
		2 * time.Second,
		10 * time.Second,
		500 * time.Millisecond,
	}, f.sleeps)
}

func TestRun_FailureContinuesAndLogsOnce(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{}, map[registry.Kind]registry.Handler{
		registry.Close: func(context.Context, model.Params) error { return errors.New("no such process") },
	})
	plan := model.NewWorkflowPlan([]model.Step{
		{Command: "Close", Parameters: model.StringParams("ghost")},
		{Command: "Open", Parameters: model.StringParams("calc")},
	})

	report, err := f.in.Run(context.Background(), plan)
	require.NoError(t, err)
	assert.False(t, report.OK)
	assert.Equal(t, StatusFailed, report.Steps[0].Status)
	assert.Equal(t, "no such process", report.Steps[0].Error)
	assert.Equal(t, StatusSucceeded, report.Steps[1].Status)
	assert.Contains(t, f.out.String(), "Error, check logs\n")

	errs := f.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	fields := errs[0].ContextMap()
	assert.Equal(t, int64(0), fields["index"])
	assert.Equal(t, "Close", fields["command"])
	assert.Equal(t, "run-1", fields["run_id"])
}

func TestRun_PanicIsIsolated(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{}, map[registry.Kind]registry.Handler{
		registry.Type: func(context.Context, model.Params) error { panic("keyboard on fire") },
	})
	plan := model.NewWorkflowPlan([]model.Step{
		{Command: "Type", Parameters: model.StringParams("x")},
		{Command: "Open", Parameters: model.StringParams("y")},
	})

	report, err := f.in.Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Steps[0].Status)
	assert.Contains(t, report.Steps[0].Error, "keyboard on fire")
	assert.Equal(t, StatusSucceeded, report.Steps[1].Status)
}

func TestRun_UnknownCommand(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{}, nil)

	report, err := f.in.Run(context.Background(), model.ErrorPlan(model.ReasonInvalidResponse))
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.Equal(t, StatusUnknown, report.Steps[0].Status)
	assert.Contains(t, f.out.String(), "Unknown command: error\n")
	assert.Empty(t, f.calls)
	assert.Equal(t, 1, f.logs.FilterMessage("planner returned an error plan").Len())
}

func TestRun_SkippedIsNotFailure(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{}, map[registry.Kind]registry.Handler{
		registry.Shell: func(context.Context, model.Params) error { return registry.Skipped("not confirmed") },
	})
	report, err := f.in.Run(context.Background(), model.NewCommandPlan("powershell", model.StringParams("shutdown")))
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.Equal(t, StatusSkipped, report.Steps[0].Status)
	assert.Equal(t, registry.Shell, report.Steps[0].Kind)
	assert.NotContains(t, f.out.String(), "Error, check logs")
	assert.Empty(t, report.Succeeded())
}

func TestRun_StepTimeout(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{StepTimeout: 20 * time.Millisecond}, map[registry.Kind]registry.Handler{
		registry.Click: func(ctx context.Context, _ model.Params) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	report, err := f.in.Run(context.Background(), model.NewCommandPlan("Click", model.StringParams("playbutton")))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Steps[0].Status)
	assert.Contains(t, report.Steps[0].Error, "timed out")
}

func TestRun_TimedOutStepFinishesBeforeNextStarts(t *testing.T) {
	var typing atomic.Bool
	var overlapped atomic.Bool
	f := newFixture(t, config.InterpreterConfig{StepTimeout: 20 * time.Millisecond}, map[registry.Kind]registry.Handler{
		registry.Type: func(ctx context.Context, _ model.Params) error {
			typing.Store(true)
			defer typing.Store(false)
			time.Sleep(100 * time.Millisecond)
			return ctx.Err()
		},
		registry.Shortcut: func(context.Context, model.Params) error {
			if typing.Load() {
				overlapped.Store(true)
			}
			return nil
		},
	})
	plan := model.NewWorkflowPlan([]model.Step{
		{Command: "Type", Parameters: model.StringParams("a long sentence")},
		{Command: "Shortcut", Parameters: model.StringParams("enter")},
	})
	report, err := f.in.Run(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, report.Steps, 2)
	assert.Equal(t, StatusFailed, report.Steps[0].Status)
	assert.Contains(t, report.Steps[0].Error, "timed out")
	assert.Equal(t, StatusSucceeded, report.Steps[1].Status)
	assert.False(t, overlapped.Load(), "shortcut ran while typing was still in progress")
}

func TestRun_CancelStopsInFlightStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	f := newFixture(t, config.InterpreterConfig{}, map[registry.Kind]registry.Handler{
		registry.Spotify: func(ctx context.Context, _ model.Params) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	})
	go func() {
		<-started
		cancel()
	}()

	plan := model.NewWorkflowPlan([]model.Step{
		{Command: "Spotify", Parameters: model.StringParams("artist")},
		{Command: "Open", Parameters: model.StringParams("never")},
	})
	report, err := f.in.Run(ctx, plan)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, report.Steps, 1)
	assert.Equal(t, StatusCancelled, report.Steps[0].Status)
	assert.Empty(t, f.calls)
}

func TestReport_SucceededCanonicalizesKinds(t *testing.T) {
	f := newFixture(t, config.InterpreterConfig{}, map[registry.Kind]registry.Handler{
		registry.Close: func(context.Context, model.Params) error { return errors.New("boom") },
	})
	plan := model.NewWorkflowPlan([]model.Step{
		{Command: "url", Parameters: model.StringParams("https://spotify.com")},
		{Command: "close", Parameters: model.StringParams("brave")},
		{Command: "volume", Parameters: model.NumberParams(30)},
	})
	report, err := f.in.Run(context.Background(), plan)
	require.NoError(t, err)

	got := report.Succeeded()
	require.Len(t, got, 2)
	assert.Equal(t, "Website", got[0].Command)
	assert.Equal(t, "Volume", got[1].Command)
	n, ok := got[1].Parameters.Number()
	assert.True(t, ok)
	assert.Equal(t, 30.0, n)
}
