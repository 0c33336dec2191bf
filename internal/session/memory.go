package session

import (
	"sync"

	"github.com/mj1618/desktop-agent/internal/model"
	"go.uber.org/zap"
)

// Stats reports memory usage.
type Stats struct {
	Messages        int   `yaml:"conversation_messages" json:"conversation_messages"`
	MaxInteractions int   `yaml:"max_interactions"      json:"max_interactions"`
	State           State `yaml:"system_state"          json:"system_state"`
}

// Memory holds the sliding window of recent exchanges and the desktop
// state. It is owned by the agent loop.
type Memory struct {
	mu      sync.Mutex
	max     int
	history []model.Message
	state   State
	rules   Rules
	logger  *zap.Logger
}

// NewMemory keeps at most maxInteractions user/assistant exchanges.
func NewMemory(maxInteractions int, rules Rules, logger *zap.Logger) *Memory {
	if maxInteractions < 1 {
		maxInteractions = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{max: maxInteractions, rules: rules, logger: logger}
}

// AddUser records a user command.
func (m *Memory) AddUser(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, model.Message{Role: model.RoleUser, Content: command})
	m.trim()
}

// AddAssistant records the plan the planner returned.
func (m *Memory) AddAssistant(plan model.Plan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, model.Message{Role: model.RoleAssistant, Content: plan.String()})
	m.trim()
}

func (m *Memory) trim() {
	limit := m.max * 2
	if n := len(m.history); n > limit {
		m.history = append([]model.Message(nil), m.history[n-limit:]...)
		m.logger.Debug("trimmed conversation history", zap.Int("max_interactions", m.max))
	}
}

// Apply folds successfully executed steps into the state and returns what
// changed.
func (m *Memory) Apply(steps []model.Step) []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state.Clone()
	m.state.Apply(steps, m.rules)
	changes := Diff(prev, m.state)
	for _, c := range changes {
		m.logger.Debug("state updated", zap.String("field", c.Field), zap.String("from", c.From), zap.String("to", c.To))
	}
	return changes
}

// Messages returns a copy of the history window.
func (m *Memory) Messages() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Message(nil), m.history...)
}

// State returns a copy of the current state.
func (m *Memory) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Summary describes the current state for the planner.
func (m *Memory) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Summary()
}

// Clear drops all history and resets the state.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	m.state = State{}
	m.logger.Info("memory cleared")
}

// Stats returns current usage.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Messages: len(m.history), MaxInteractions: m.max, State: m.state.Clone()}
}
