package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParsePlan_SingleCommand(t *testing.T) {
	p, err := ParsePlan([]byte(`{"command": "Open", "parameters": "notepad"}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.IsWorkflow() {
		t.Fatal("single command parsed as workflow")
	}
	steps := p.Steps()
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(steps))
	}
	if steps[0].Command != "Open" || steps[0].Parameters.String() != "notepad" {
		t.Errorf("got %+v", steps[0])
	}
	if _, ok := steps[0].DelayDuration(); ok {
		t.Error("single command should carry no delay")
	}
}

func TestParsePlan_Workflow(t *testing.T) {
	doc := `{"workflow": [
		{"command": "Open", "parameters": "brave", "delay": 2},
		{"action": "Volume", "parameters": 50},
		{"command": "Type", "parameters": "hello", "delay": 0.5}
	]}`
	p, err := ParsePlan([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	steps := p.Steps()
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(steps))
	}
	if steps[1].Command != "Volume" {
		t.Errorf("action key not accepted: %+v", steps[1])
	}
	if n, ok := steps[1].Parameters.Number(); !ok || n != 50 {
		t.Errorf("Number() = %v, %v; want 50, true", n, ok)
	}
	if !steps[1].Parameters.IsNumber() {
		t.Error("numeric parameter should report IsNumber")
	}
	if d, ok := steps[0].DelayDuration(); !ok || d != 2*time.Second {
		t.Errorf("delay = %v, %v; want 2s", d, ok)
	}
	if d, ok := steps[2].DelayDuration(); !ok || d != 500*time.Millisecond {
		t.Errorf("delay = %v, %v; want 500ms", d, ok)
	}
	if _, ok := steps[1].DelayDuration(); ok {
		t.Error("step without delay should report none")
	}
}

func TestParsePlan_Empty(t *testing.T) {
	for _, doc := range []string{`{}`, `{"workflow": []}`, `{"parameters": "x"}`} {
		_, err := ParsePlan([]byte(doc))
		if !errors.Is(err, ErrEmptyPlan) {
			t.Errorf("ParsePlan(%s) err = %v, want ErrEmptyPlan", doc, err)
		}
	}
}

func TestParsePlan_Invalid(t *testing.T) {
	if _, err := ParsePlan([]byte(`not json`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestPlanSteps_ReturnsCopy(t *testing.T) {
	p := NewWorkflowPlan([]Step{{Command: "Open", Parameters: StringParams("a")}})
	steps := p.Steps()
	steps[0].Command = "Close"
	if p.Steps()[0].Command != "Open" {
		t.Error("mutating Steps() result changed the plan")
	}
}

func TestErrorPlan(t *testing.T) {
	p := ErrorPlan(ReasonInvalidResponse)
	if !p.IsError() {
		t.Fatal("ErrorPlan should report IsError")
	}
	got, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"command":"Error","parameters":"Invalid response format"}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestParams_Kinds(t *testing.T) {
	tests := []struct {
		in      string
		text    string
		isNum   bool
		numOK   bool
		isEmpty bool
	}{
		{`"hello"`, "hello", false, false, false},
		{`"75"`, "75", false, true, false},
		{`42`, "42", true, true, false},
		{`12.5`, "12.5", true, true, false},
		{`null`, "", false, false, true},
		{`{"a": 1}`, `{"a":1}`, false, false, false},
	}
	for _, tt := range tests {
		var p Params
		if err := json.Unmarshal([]byte(tt.in), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if p.String() != tt.text {
			t.Errorf("%s: String() = %q, want %q", tt.in, p.String(), tt.text)
		}
		if p.IsNumber() != tt.isNum {
			t.Errorf("%s: IsNumber() = %v, want %v", tt.in, p.IsNumber(), tt.isNum)
		}
		if _, ok := p.Number(); ok != tt.numOK {
			t.Errorf("%s: Number() ok = %v, want %v", tt.in, ok, tt.numOK)
		}
		if p.IsZero() != tt.isEmpty {
			t.Errorf("%s: IsZero() = %v, want %v", tt.in, p.IsZero(), tt.isEmpty)
		}
	}
}

func TestParseTarget(t *testing.T) {
	tgt, ok := ParseTarget(" 431, 543 ")
	if !ok || tgt != (ScreenTarget{X: 431, Y: 543}) {
		t.Errorf("got %v, %v", tgt, ok)
	}
	for _, s := range []string{"", "1", "a,b", "1,2,3", "playbutton"} {
		if _, ok := ParseTarget(s); ok {
			t.Errorf("ParseTarget(%q) should fail", s)
		}
	}
}
