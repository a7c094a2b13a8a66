package toolgate

import (
	"context"
	"fmt"
	"time"

	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/approval"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/gate"
	spolicy "github.com/viant/toolgate/service/policy"
	"github.com/viant/toolgate/service/runner"
	"github.com/viant/toolgate/service/runner/gofunc"
	"github.com/viant/toolgate/service/scheduler"
	taskpkg "github.com/viant/toolgate/service/task"
)

// Wait blocks until the task reaches a terminal status or the timeout
// elapses, returning the final task record.
type Wait func(ctx context.Context, timeout time.Duration) (*mtask.Task, error)

// Runtime represents a gated execution runtime.
type Runtime struct {
	tasks     *taskpkg.Service
	policies  *spolicy.Service
	approvals approval.Service
	gate      *gate.Service
	gofunc    *gofunc.Engine
	runner    *runner.Service
	scheduler *scheduler.Service
}

// Submit records a new task and returns a wait helper observing its outcome.
// The task is picked up by the scheduler once Start has been called.
func (r *Runtime) Submit(ctx context.Context, submission *taskpkg.Submission) (*mtask.Task, Wait, error) {
	aTask, err := r.tasks.Create(ctx, submission)
	if err != nil {
		return nil, nil, err
	}
	wait := func(ctx context.Context, timeout time.Duration) (*mtask.Task, error) {
		return r.waitForTask(ctx, aTask.ID, timeout)
	}
	return aTask, wait, nil
}

// ExecuteNow runs a task synchronously on the calling goroutine, bypassing
// the queue. Intended for ad-hoc jobs and tests; semantics (policy, approval,
// timeout, classification) are identical to queued execution.
func (r *Runtime) ExecuteNow(ctx context.Context, submission *taskpkg.Submission) (*mtask.Task, error) {
	aTask, err := r.tasks.Create(ctx, submission)
	if err != nil {
		return nil, err
	}
	if _, err = r.tasks.MarkRunning(ctx, aTask.ID); err != nil {
		return nil, err
	}
	r.runner.Execute(ctx, aTask)
	return r.tasks.Task(ctx, aTask.ID)
}

func (r *Runtime) waitForTask(ctx context.Context, taskID string, timeout time.Duration) (*mtask.Task, error) {
	deadline := time.Now().Add(timeout)
	for {
		aTask, err := r.tasks.Task(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if aTask.Status.IsTerminal() {
			return aTask, nil
		}
		if time.Now().After(deadline) {
			return aTask, fmt.Errorf("timeout waiting for task %q", taskID)
		}
		select {
		case <-ctx.Done():
			return aTask, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Start starts the runtime workers and the scheduler loop.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.runner.Start(ctx); err != nil {
		return err
	}
	go r.scheduler.Start(ctx)
	return nil
}

// Shutdown stops the scheduler and the runner workers.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.scheduler.Shutdown()
	r.runner.Shutdown()
	return nil
}

// Task returns a task record.
func (r *Runtime) Task(ctx context.Context, id string) (*mtask.Task, error) {
	return r.tasks.Task(ctx, id)
}

// Tasks lists task records.
func (r *Runtime) Tasks(ctx context.Context, parameters ...*dao.Parameter) ([]*mtask.Task, error) {
	return r.tasks.Tasks(ctx, parameters...)
}

// ToolCalls lists tool-call records.
func (r *Runtime) ToolCalls(ctx context.Context, parameters ...*dao.Parameter) ([]*mtask.ToolCall, error) {
	return r.tasks.ToolCalls(ctx, parameters...)
}

// TaskService exposes the task state machine.
func (r *Runtime) TaskService() *taskpkg.Service {
	return r.tasks
}

// Approvals exposes the approval workflow.
func (r *Runtime) Approvals() approval.Service {
	return r.approvals
}

// Policies exposes the access-policy graph.
func (r *Runtime) Policies() *spolicy.Service {
	return r.policies
}

// Gate exposes the tool invocation adapter.
func (r *Runtime) Gate() *gate.Service {
	return r.gate
}

// GoFuncs exposes the embedded-function engine, so hosts can register
// compiled-in task bodies.
func (r *Runtime) GoFuncs() *gofunc.Engine {
	return r.gofunc
}

// Engines exposes the runtime engine registry.
func (r *Runtime) Engines() *runner.Engines {
	return r.runner.Engines()
}
