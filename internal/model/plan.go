package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel plans produced when the planner cannot deliver a usable plan.
const (
	ErrorCommand          = "Error"
	ReasonInvalidResponse = "Invalid response format"
	ReasonRequestFailed   = "API request failed"
)

// ErrEmptyPlan is returned by ParsePlan when the document names neither a
// command nor a workflow.
var ErrEmptyPlan = errors.New("plan has neither command nor workflow")

// Step is one action of a workflow.
type Step struct {
	Command    string   `json:"command"            yaml:"command"`
	Parameters Params   `json:"parameters"         yaml:"parameters"`
	Delay      *float64 `json:"delay,omitempty"    yaml:"delay,omitempty"` // seconds
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var aux struct {
		Command    string   `json:"command"`
		Action     string   `json:"action"`
		Parameters Params   `json:"parameters"`
		Delay      *float64 `json:"delay"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Command = aux.Command
	if s.Command == "" {
		s.Command = aux.Action
	}
	s.Command = strings.TrimSpace(s.Command)
	s.Parameters = aux.Parameters
	s.Delay = aux.Delay
	return nil
}

// DelayDuration returns the declared post-step delay, if any.
func (s Step) DelayDuration() (time.Duration, bool) {
	if s.Delay == nil || *s.Delay < 0 {
		return 0, false
	}
	return time.Duration(*s.Delay * float64(time.Second)), true
}

// Plan is the structured response of the planner: a single command or a
// workflow of steps. A Plan is never modified once parsed.
type Plan struct {
	Command    string
	Parameters Params
	Workflow   []Step
}

// NewCommandPlan builds a single-command plan.
func NewCommandPlan(command string, params Params) Plan {
	return Plan{Command: command, Parameters: params}
}

// NewWorkflowPlan builds a plan from steps. The slice is copied.
func NewWorkflowPlan(steps []Step) Plan {
	return Plan{Workflow: append([]Step(nil), steps...)}
}

// ErrorPlan returns the sentinel plan {command: "Error", parameters: reason}.
func ErrorPlan(reason string) Plan {
	return NewCommandPlan(ErrorCommand, StringParams(reason))
}

// ParsePlan decodes a plan document.
func ParsePlan(data []byte) (Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	if p.Command == "" && len(p.Workflow) == 0 {
		return Plan{}, ErrEmptyPlan
	}
	return p, nil
}

// IsWorkflow reports whether the plan carries a workflow.
func (p Plan) IsWorkflow() bool { return len(p.Workflow) > 0 }

// IsError reports whether p is one of the planner's sentinel plans.
func (p Plan) IsError() bool {
	return !p.IsWorkflow() && strings.EqualFold(p.Command, ErrorCommand)
}

// Steps returns the plan as an ordered list of steps. A single-command plan
// yields one step without a delay. The returned slice is a copy.
func (p Plan) Steps() []Step {
	if p.IsWorkflow() {
		return append([]Step(nil), p.Workflow...)
	}
	if p.Command == "" {
		return nil
	}
	return []Step{{Command: p.Command, Parameters: p.Parameters}}
}

type planJSON struct {
	Command    string  `json:"command,omitempty"`
	Action     string  `json:"action,omitempty"`
	Parameters *Params `json:"parameters,omitempty"`
	Workflow   []Step  `json:"workflow,omitempty"`
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	var aux planJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Command = strings.TrimSpace(aux.Command)
	if p.Command == "" {
		p.Command = strings.TrimSpace(aux.Action)
	}
	p.Parameters = Params{}
	if aux.Parameters != nil {
		p.Parameters = *aux.Parameters
	}
	p.Workflow = aux.Workflow
	return nil
}

func (p Plan) MarshalJSON() ([]byte, error) {
	if p.IsWorkflow() {
		return json.Marshal(planJSON{Workflow: p.Workflow})
	}
	params := p.Parameters
	return json.Marshal(planJSON{Command: p.Command, Parameters: &params})
}

func (p Plan) MarshalYAML() (interface{}, error) {
	if p.IsWorkflow() {
		return struct {
			Workflow []Step `yaml:"workflow"`
		}{p.Workflow}, nil
	}
	return struct {
		Command    string `yaml:"command"`
		Parameters Params `yaml:"parameters"`
	}{p.Command, p.Parameters}, nil
}

// String renders the plan as compact JSON.
func (p Plan) String() string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%s %s", p.Command, p.Parameters)
	}
	return string(b)
}
