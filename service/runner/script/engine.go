package script

import (
	"context"
	"fmt"

	"github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/runner"
	"gopkg.in/yaml.v3"
)

// RuntimeID identifies the YAML call-plan runtime.
const RuntimeID = "script"

// Step invokes one tool with expanded arguments and stores the result
// under As, or step<N> when As is empty.
type Step struct {
	Call string                 `yaml:"call"`
	With map[string]interface{} `yaml:"with,omitempty"`
	As   string                 `yaml:"as,omitempty"`
}

// Plan is a sequential tool call plan with an optional result expression.
type Plan struct {
	Steps  []*Step `yaml:"steps"`
	Result string  `yaml:"result,omitempty"`
}

// Engine executes YAML call plans carried in the task code.
type Engine struct{}

// New creates a script engine.
func New() *Engine {
	return &Engine{}
}

// Parse decodes the task code into a call plan.
func Parse(code string) (*Plan, error) {
	plan := &Plan{}
	if err := yaml.Unmarshal([]byte(code), plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}
	return plan, nil
}

// Execute runs the plan steps in order against the task capability.
func (e *Engine) Execute(ctx context.Context, aTask *task.Task, tools *runner.Capability) (interface{}, error) {
	plan, err := Parse(aTask.Code)
	if err != nil {
		return nil, err
	}
	state := map[string]interface{}{}
	for i, step := range plan.Steps {
		if step.Call == "" {
			return nil, fmt.Errorf("step %v: call is empty", i+1)
		}
		args, err := expandValue(step.With, state)
		if err != nil {
			return nil, fmt.Errorf("step %v: %w", i+1, err)
		}
		var withArgs map[string]interface{}
		if args != nil {
			withArgs, _ = args.(map[string]interface{})
		}
		value, err := tools.Path(step.Call).Call(ctx, withArgs)
		if err != nil {
			return nil, err
		}
		name := step.As
		if name == "" {
			name = fmt.Sprintf("step%v", i+1)
		}
		state[name] = runner.Sanitize(value)
	}
	if plan.Result == "" {
		return nil, nil
	}
	return Expand(plan.Result, state)
}
