package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/interpreter"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/planner"
	"github.com/mj1618/desktop-agent/internal/registry"
	"github.com/mj1618/desktop-agent/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type scriptedPlanner struct {
	plans     map[string]model.Plan
	summaries []string
	commands  []string
}

func (s *scriptedPlanner) Send(_ context.Context, command string, pc planner.Context) model.Plan {
	s.commands = append(s.commands, command)
	s.summaries = append(s.summaries, pc.Summary())
	if p, ok := s.plans[command]; ok {
		return p
	}
	return model.ErrorPlan(model.ReasonInvalidResponse)
}

type harness struct {
	out     *bytes.Buffer
	planner *scriptedPlanner
	memory  *session.Memory
	calls   []string
	runner  *interpreter.Interpreter
}

func newHarness(t *testing.T, plans map[string]model.Plan) *harness {
	t.Helper()
	h := &harness{
		out:     &bytes.Buffer{},
		planner: &scriptedPlanner{plans: plans},
		memory:  session.NewMemory(10, session.Rules{Browsers: []string{"brave"}, Terminals: []string{"cmd"}}, nil),
	}
	handlers := make(map[registry.Kind]registry.Handler, len(registry.Kinds))
	for _, k := range registry.Kinds {
		k := k
		handlers[k] = func(_ context.Context, p model.Params) error {
			h.calls = append(h.calls, string(k)+" "+p.String())
			if p.String() == "fail" {
				return errors.New("boom")
			}
			return nil
		}
	}
	reg, err := registry.New(handlers)
	require.NoError(t, err)
	h.runner = interpreter.New(reg, config.InterpreterConfig{}, nil, h.out)
	return h
}

func (h *harness) agent(in Input) *Agent {
	return New(in, h.planner, h.runner, h.memory, nil, h.out)
}

func TestRun_TextSession(t *testing.T) {
	h := newHarness(t, map[string]model.Plan{
		"open brave": model.NewCommandPlan("Open", model.StringParams("brave")),
		"volume 40":  model.NewCommandPlan("Volume", model.StringParams("40")),
	})
	in := NewTextInput(strings.NewReader("open brave\n\n   \nvolume 40\nplease exit\nopen notepad\n"), h.out, "> ")
	defer in.Close()

	require.NoError(t, h.agent(in).Run(context.Background()))

	assert.Equal(t, []string{"Open brave", "Volume 40"}, h.calls)
	assert.Equal(t, []string{"open brave", "volume 40"}, h.planner.commands)
	assert.Equal(t, "No applications or browser tabs are currently open.", h.planner.summaries[0])
	assert.Contains(t, h.planner.summaries[1], "Web browser is currently open")

	out := h.out.String()
	assert.Contains(t, out, "You said: open brave\n")
	assert.Contains(t, out, "Executing: open with parameters: brave\n")
	assert.Contains(t, out, "Executing: volume with parameters: 40\n")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.NotContains(t, out, "notepad")
	assert.Equal(t, 3, strings.Count(out, Separator+"\n"), "banner plus one per command")

	st := h.memory.State()
	assert.True(t, st.BrowserOpen)
	require.NotNil(t, st.LastVolume)
	assert.Equal(t, 40, *st.LastVolume)
	assert.Len(t, h.memory.Messages(), 4)
}

func TestRun_EOFIsCleanExit(t *testing.T) {
	h := newHarness(t, nil)
	in := NewTextInput(strings.NewReader(""), h.out, "")
	defer in.Close()

	require.NoError(t, h.agent(in).Run(context.Background()))
	assert.Contains(t, h.out.String(), "Goodbye!")
	assert.Empty(t, h.planner.commands)
}

func TestHandle_OnlySucceededStepsUpdateState(t *testing.T) {
	h := newHarness(t, map[string]model.Plan{
		"go": model.NewWorkflowPlan([]model.Step{
			{Command: "Open", Parameters: model.StringParams("fail")},
			{Command: "Volume", Parameters: model.StringParams("30")},
		}),
	})

	report, err := h.agent(nil).Handle(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(interpreter.StatusFailed))
	assert.Contains(t, h.out.String(), "Error, check logs")

	st := h.memory.State()
	assert.False(t, st.BrowserOpen)
	require.NotNil(t, st.LastVolume)
	assert.Equal(t, 30, *st.LastVolume)
}

func TestHandle_ErrorPlan(t *testing.T) {
	h := newHarness(t, nil)

	report, err := h.agent(nil).Handle(context.Background(), "gibberish")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(interpreter.StatusUnknown))
	assert.Contains(t, h.out.String(), "Unknown command: error\n")
	assert.Empty(t, h.calls)

	msgs := h.memory.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, `{"command":"Error","parameters":"Invalid response format"}`, msgs[1].Content)
}

func TestRun_Cancelled(t *testing.T) {
	h := newHarness(t, nil)
	pr, pw := io.Pipe()
	in := NewTextInput(pr, h.out, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.agent(in).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, in.Close())
	require.NoError(t, pw.Close())
}

func TestRun_InputError(t *testing.T) {
	h := newHarness(t, nil)
	in := NewTextInput(iotest.ErrReader(errors.New("device gone")), h.out, "")
	defer in.Close()

	err := h.agent(in).Run(context.Background())
	assert.ErrorContains(t, err, "read input: device gone")
}

func TestTextInput_Prompt(t *testing.T) {
	var out bytes.Buffer
	in := NewTextInput(strings.NewReader("a\nb\n"), &out, "> ")
	defer in.Close()

	for _, want := range []string{"a", "b"} {
		got, err := in.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := in.Read(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}

type stubListener struct {
	texts  []string
	closed bool
}

func (s *stubListener) Listen(context.Context) (string, error) {
	if len(s.texts) == 0 {
		return "", io.EOF
	}
	t := s.texts[0]
	s.texts = s.texts[1:]
	return t, nil
}

func (s *stubListener) Close() error {
	s.closed = true
	return nil
}

func TestVoiceInput(t *testing.T) {
	h := newHarness(t, map[string]model.Plan{
		"Take a screenshot.": model.NewCommandPlan("Screenshot", model.Params{}),
	})
	l := &stubListener{texts: []string{"", "Take a screenshot.", "Quit."}}
	in := NewVoiceInput(l)

	require.NoError(t, h.agent(in).Run(context.Background()))
	assert.Equal(t, []string{"Screenshot "}, h.calls)
	require.NoError(t, in.Close())
	assert.True(t, l.closed)
}

func TestIsExit(t *testing.T) {
	tests := map[string]bool{
		"exit":               true,
		"Please QUIT now":    true,
		"exiting the app":    true,
		"open excel":         false,
		"close the terminal": false,
	}
	for text, want := range tests {
		assert.Equal(t, want, IsExit(text), text)
	}
}
