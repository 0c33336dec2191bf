package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mj1618/desktop-agent/internal/model"
	"gopkg.in/yaml.v3"
)

var stepKeys = map[string]bool{"command": true, "action": true, "parameters": true, "delay": true}

// ParseWorkflow reads a plan written by hand. It accepts a plan document
// ({command, parameters} or {workflow: [...]}) or a bare list of steps, in
// YAML or JSON. A list item may use the shorthand "- Open: notepad".
func ParseWorkflow(data []byte) (model.Plan, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Plan{}, fmt.Errorf("failed to parse workflow: %w", err)
	}
	if doc == nil {
		return model.Plan{}, fmt.Errorf("no steps provided; expected a YAML list of actions")
	}

	if list, ok := doc.([]interface{}); ok {
		steps := make([]interface{}, len(list))
		for i, item := range list {
			step, err := expandStep(item)
			if err != nil {
				return model.Plan{}, fmt.Errorf("step %d: %w", i+1, err)
			}
			steps[i] = step
		}
		doc = map[string]interface{}{"workflow": steps}
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return model.Plan{}, fmt.Errorf("failed to parse workflow: %w", err)
	}
	return model.ParsePlan(b)
}

func expandStep(item interface{}) (map[string]interface{}, error) {
	m, ok := item.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %T", item)
	}
	if len(m) == 1 {
		for k, v := range m {
			if !stepKeys[k] {
				return map[string]interface{}{"command": k, "parameters": v}, nil
			}
		}
	}
	return m, nil
}
