package toolgate_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/toolgate"
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/model/types"
	"github.com/viant/toolgate/service/approval"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/runner"
	"github.com/viant/toolgate/service/runner/gofunc"
	taskpkg "github.com/viant/toolgate/service/task"
)

type echoInput struct {
	Message string `json:"message"`
}

type echoOutput struct {
	Message string `json:"message"`
}

// echoService has no declared approval mode, so with an empty policy graph
// every call falls back to requiring approval.
type echoService struct{}

func (s *echoService) Name() string { return "demo" }

func (s *echoService) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:   "echo",
			Input:  reflect.TypeOf(&echoInput{}),
			Output: reflect.TypeOf(&echoOutput{}),
		},
	}
}

func (s *echoService) Method(name string) (types.Executable, error) {
	if name != "echo" {
		return nil, types.NewMethodNotFoundError(name)
	}
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*echoInput)
		if !ok {
			return types.NewInvalidInputError(in)
		}
		output, ok := out.(*echoOutput)
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		output.Message = input.Message
		return nil
	}, nil
}

func newTestService() *toolgate.Service {
	return toolgate.New(
		toolgate.WithExtensionServices(&echoService{}),
		toolgate.WithRetryAfterMs(10),
	)
}

func TestService_approvalGatedExecution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := newTestService()
	rt := srv.Runtime()
	rt.GoFuncs().Register("callEcho", func(ctx context.Context, tools *runner.Capability) (interface{}, error) {
		return tools.Tool("demo").Tool("echo").Call(ctx, map[string]interface{}{"message": "hello"})
	})
	assert.Nil(t, rt.Start(ctx))
	defer rt.Shutdown(ctx)

	// approve the parked call as soon as it shows up, capturing the states
	// observed at that moment
	type observation struct {
		taskStatus mtask.Status
		callStatus mtask.CallStatus
	}
	observed := make(chan observation, 1)
	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			pending, _ := rt.Approvals().ListPending(ctx, dao.NewParameter("ToolPath", "demo.echo"))
			if len(pending) > 0 {
				running, _ := rt.Task(ctx, "task-approved")
				parked, _ := rt.ToolCalls(ctx, dao.NewParameter("Status", string(mtask.CallStatusPendingApproval)))
				if running != nil && len(parked) == 1 {
					observed <- observation{taskStatus: running.Status, callStatus: parked[0].Status}
				}
				_, _ = rt.Approvals().Decide(ctx, pending[0].ID, true, "reviewer-1", "looks fine")
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()

	aTask, wait, err := rt.Submit(ctx, &taskpkg.Submission{
		ID:          "task-approved",
		Code:        "callEcho",
		RuntimeID:   gofunc.RuntimeID,
		WorkspaceID: "ws1",
		ActorID:     "agent-7",
	})
	assert.Nil(t, err)
	assert.Equal(t, mtask.StatusQueued, aTask.Status)

	aTask, err = wait(ctx, 10*time.Second)
	assert.Nil(t, err)
	assert.Equal(t, mtask.StatusCompleted, aTask.Status)

	select {
	case seen := <-observed:
		assert.Equal(t, mtask.StatusRunning, seen.taskStatus)
		assert.Equal(t, mtask.CallStatusPendingApproval, seen.callStatus)
	default:
		t.Fatal("approval was never observed pending")
	}
	if assert.NotNil(t, aTask.Result) {
		result, ok := aTask.Result.(map[string]interface{})
		if assert.True(t, ok) {
			assert.Equal(t, "hello", result["message"])
		}
	}
	if assert.NotNil(t, aTask.ExitCode) {
		assert.Equal(t, 0, *aTask.ExitCode)
	}

	calls, err := rt.ToolCalls(ctx, dao.NewParameter("Status", string(mtask.CallStatusCompleted)))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(calls))
}

func TestService_reviewerDenial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := newTestService()
	rt := srv.Runtime()
	rt.GoFuncs().Register("callEcho", func(ctx context.Context, tools *runner.Capability) (interface{}, error) {
		return tools.Path("demo.echo").Call(ctx, nil)
	})
	assert.Nil(t, rt.Start(ctx))
	defer rt.Shutdown(ctx)

	stop := approval.AutoReject(ctx, rt.Approvals(), "not allowed", 10*time.Millisecond)
	defer stop()

	_, wait, err := rt.Submit(ctx, &taskpkg.Submission{
		ID:        "task-denied",
		Code:      "callEcho",
		RuntimeID: gofunc.RuntimeID,
	})
	assert.Nil(t, err)

	aTask, err := wait(ctx, 10*time.Second)
	assert.Nil(t, err)
	assert.Equal(t, mtask.StatusDenied, aTask.Status)
	assert.Contains(t, aTask.Error, "not allowed")
}

func TestService_scriptRuntime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := newTestService()
	rt := srv.Runtime()
	assert.Nil(t, rt.Start(ctx))
	defer rt.Shutdown(ctx)

	stop := approval.AutoApprove(ctx, rt.Approvals(), 10*time.Millisecond)
	defer stop()

	_, wait, err := rt.Submit(ctx, &taskpkg.Submission{
		ID:        "task-script",
		RuntimeID: "script",
		Code: `
steps:
  - call: demo.echo
    with:
      message: scripted
    as: echoed
result: ${echoed.message}
`,
	})
	assert.Nil(t, err)

	aTask, err := wait(ctx, 10*time.Second)
	assert.Nil(t, err)
	assert.Equal(t, mtask.StatusCompleted, aTask.Status)
	assert.Equal(t, "scripted", aTask.Result)
}

func TestService_timeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := newTestService()
	rt := srv.Runtime()
	rt.GoFuncs().Register("sleepy", func(ctx context.Context, tools *runner.Capability) (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Minute):
			return "done", nil
		}
	})

	aTask, err := rt.ExecuteNow(ctx, &taskpkg.Submission{
		ID:        "task-timeout",
		Code:      "sleepy",
		RuntimeID: gofunc.RuntimeID,
		TimeoutMs: 50,
	})
	assert.Nil(t, err)
	assert.Equal(t, mtask.StatusTimedOut, aTask.Status)
	assert.Contains(t, aTask.Error, "50ms")
}
