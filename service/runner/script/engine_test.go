package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/gate"
	"github.com/viant/toolgate/service/runner"
)

type recordedCall struct {
	path  string
	input map[string]interface{}
}

type planAdapter struct {
	calls   []recordedCall
	results map[string]*gate.Result
}

func (a *planAdapter) Invoke(ctx context.Context, taskID, callID, toolPath string, input map[string]interface{}) *gate.Result {
	a.calls = append(a.calls, recordedCall{path: toolPath, input: input})
	if result, ok := a.results[toolPath]; ok {
		return result
	}
	return gate.Failed("unknown tool: " + toolPath)
}

func TestEngine_Execute(t *testing.T) {
	adapter := &planAdapter{
		results: map[string]*gate.Result{
			"system.storage.list": gate.Ok(map[string]interface{}{
				"files": []interface{}{"a.txt", "b.txt"},
			}),
			"demo.echo": gate.Ok(map[string]interface{}{"echoed": true}),
		},
	}
	engine := New()
	aTask := &task.Task{ID: "t1", Code: `
steps:
  - call: system.storage.list
    with:
      location: /tmp
    as: listing
  - call: demo.echo
    with:
      message: found ${listing.files}
result: ${listing.files}
`}
	value, err := engine.Execute(context.Background(), aTask, runner.NewCapability(adapter, aTask.ID))
	assert.Nil(t, err)
	assert.EqualValues(t, []interface{}{"a.txt", "b.txt"}, value)
	if assert.Equal(t, 2, len(adapter.calls)) {
		assert.Equal(t, "system.storage.list", adapter.calls[0].path)
		assert.EqualValues(t, map[string]interface{}{"location": "/tmp"}, adapter.calls[0].input)
		assert.Equal(t, "found [a.txt b.txt]", adapter.calls[1].input["message"])
	}
}

func TestEngine_Execute_errors(t *testing.T) {
	engine := New()

	var testCases = []struct {
		description string
		code        string
	}{
		{
			description: "invalid yaml",
			code:        "steps: [",
		},
		{
			description: "no steps",
			code:        "result: ${x}",
		},
		{
			description: "empty call",
			code: `
steps:
  - with:
      key: value
`,
		},
	}

	adapter := &planAdapter{results: map[string]*gate.Result{}}
	for _, testCase := range testCases {
		aTask := &task.Task{ID: "t1", Code: testCase.code}
		_, err := engine.Execute(context.Background(), aTask, runner.NewCapability(adapter, aTask.ID))
		assert.NotNil(t, err, testCase.description)
	}
}

func TestEngine_Execute_toolFailure(t *testing.T) {
	adapter := &planAdapter{results: map[string]*gate.Result{}}
	aTask := &task.Task{ID: "t1", Code: `
steps:
  - call: missing.tool
`}
	_, err := New().Execute(context.Background(), aTask, runner.NewCapability(adapter, aTask.ID))
	if assert.NotNil(t, err) {
		assert.Contains(t, err.Error(), "unknown tool")
	}
}
