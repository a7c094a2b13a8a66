// Package task implements the task and tool-call state machines over keyed
// dao stores. All transitions are idempotent on terminal records so retries
// under at-least-once delivery never double-apply an outcome.
package task

import (
	"context"
	"fmt"
	"log"

	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/dao/store"
	"github.com/viant/toolgate/service/event"
)

// Submission carries everything needed to create a task.
type Submission struct {
	ID             string                 `json:"id"`
	Code           string                 `json:"code"`
	RuntimeID      string                 `json:"runtimeId"`
	OrganizationID string                 `json:"organizationId,omitempty"`
	WorkspaceID    string                 `json:"workspaceId"`
	ActorID        string                 `json:"actorId"`
	ClientID       string                 `json:"clientId,omitempty"`
	TimeoutMs      int                    `json:"timeoutMs,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Service owns task lifecycle and tool-call records.
type Service struct {
	tasks  dao.Service[string, mtask.Task]
	calls  dao.Service[string, mtask.ToolCall]
	events *event.Service
}

// Option customises the task service.
type Option func(*Service)

// WithTaskStore overrides the task record store.
func WithTaskStore(s dao.Service[string, mtask.Task]) Option {
	return func(svc *Service) { svc.tasks = s }
}

// WithToolCallStore overrides the tool-call record store.
func WithToolCallStore(s dao.Service[string, mtask.ToolCall]) Option {
	return func(svc *Service) { svc.calls = s }
}

// WithEvents wires lifecycle event publishing.
func WithEvents(events *event.Service) Option {
	return func(svc *Service) { svc.events = events }
}

// New creates a task service backed by in-memory stores unless overridden.
func New(opts ...Option) *Service {
	ret := &Service{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tasks == nil {
		ret.tasks = store.NewMemoryStoreWithStatus[string, mtask.Task](
			func(t *mtask.Task) string { return t.ID },
			func(t *mtask.Task) string { return string(t.Status) }).
			WithCloner((*mtask.Task).Clone)
	}
	if ret.calls == nil {
		ret.calls = store.NewMemoryStoreWithStatus[string, mtask.ToolCall](
			func(c *mtask.ToolCall) string { return c.Key() },
			func(c *mtask.ToolCall) string { return string(c.Status) }).
			WithCloner((*mtask.ToolCall).Clone)
	}
	return ret
}

// Create records a queued task. Reusing an id fails with dao.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, submission *Submission) (*mtask.Task, error) {
	if submission == nil || submission.ID == "" {
		return nil, dao.ErrInvalidID
	}
	aTask := mtask.New(submission.ID, submission.Code, submission.RuntimeID)
	aTask.OrganizationID = submission.OrganizationID
	aTask.WorkspaceID = submission.WorkspaceID
	aTask.ActorID = submission.ActorID
	aTask.ClientID = submission.ClientID
	aTask.Metadata = submission.Metadata
	if submission.TimeoutMs > 0 {
		aTask.TimeoutMs = submission.TimeoutMs
	}
	if err := s.tasks.Create(ctx, aTask); err != nil {
		return nil, fmt.Errorf("failed to create task %v: %w", submission.ID, err)
	}
	s.publish(ctx, &event.Context{TaskID: aTask.ID, EventType: event.TypeTaskCreated}, aTask)
	return aTask, nil
}

// Task returns the task record or dao.ErrNotFound.
func (s *Service) Task(ctx context.Context, taskID string) (*mtask.Task, error) {
	aTask, err := s.tasks.Load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if aTask == nil {
		return nil, fmt.Errorf("task %v: %w", taskID, dao.ErrNotFound)
	}
	return aTask, nil
}

// Tasks lists task records, optionally filtered by the Status parameter.
func (s *Service) Tasks(ctx context.Context, parameters ...*dao.Parameter) ([]*mtask.Task, error) {
	return s.tasks.List(ctx, parameters...)
}

// MarkRunning transitions queued->running, recording startedAt on the first
// transition only. Any other status is left untouched and returned as is.
func (s *Service) MarkRunning(ctx context.Context, taskID string) (*mtask.Task, error) {
	aTask, err := s.Task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if aTask.Status != mtask.StatusQueued {
		return aTask, nil
	}
	aTask.Start()
	if err := s.tasks.Save(ctx, aTask); err != nil {
		return nil, err
	}
	s.publish(ctx, &event.Context{TaskID: aTask.ID, EventType: event.TypeTaskStarted}, aTask)
	return aTask, nil
}

// MarkFinished applies a terminal status. Finishing an already-terminal task
// is a no-op returning the existing record, whatever status was supplied.
func (s *Service) MarkFinished(ctx context.Context, taskID string, status mtask.Status, exitCode *int, errMsg string) (*mtask.Task, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("status %v is not terminal", status)
	}
	aTask, err := s.Task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if aTask.Status.IsTerminal() {
		return aTask, nil
	}
	aTask.Finish(status, exitCode, errMsg)
	if err := s.tasks.Save(ctx, aTask); err != nil {
		return nil, err
	}
	s.publish(ctx, &event.Context{TaskID: aTask.ID, EventType: event.TypeTaskFinished}, aTask)
	return aTask, nil
}

// SetResult stores the sanitized script return value on the task record.
func (s *Service) SetResult(ctx context.Context, taskID string, result interface{}) (*mtask.Task, error) {
	aTask, err := s.Task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	aTask.Result = result
	if err := s.tasks.Save(ctx, aTask); err != nil {
		return nil, err
	}
	return aTask, nil
}

// RequestToolCall records a tool invocation. Creation is idempotent per
// (taskId, callId): re-submitting the same callId returns the existing record
// since the runtime retry loop re-issues the same logical invocation.
func (s *Service) RequestToolCall(ctx context.Context, taskID, callID, toolPath string) (*mtask.ToolCall, error) {
	aTask, err := s.Task(ctx, taskID)
	if err != nil {
		return nil, err
	}
	existing, err := s.calls.Load(ctx, mtask.CallKey(taskID, callID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	call := mtask.NewToolCall(taskID, callID, toolPath)
	call.WorkspaceID = aTask.WorkspaceID
	if err := s.calls.Create(ctx, call); err != nil {
		if err == dao.ErrAlreadyExists {
			return s.calls.Load(ctx, call.Key())
		}
		return nil, err
	}
	s.publish(ctx, &event.Context{TaskID: taskID, CallID: callID, ToolPath: toolPath, EventType: event.TypeCallRequested}, call)
	return call, nil
}

// ToolCall returns the call record or dao.ErrNotFound.
func (s *Service) ToolCall(ctx context.Context, taskID, callID string) (*mtask.ToolCall, error) {
	call, err := s.calls.Load(ctx, mtask.CallKey(taskID, callID))
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, fmt.Errorf("tool call %v: %w", mtask.CallKey(taskID, callID), dao.ErrNotFound)
	}
	return call, nil
}

// ToolCalls lists call records, optionally filtered by the Status parameter.
func (s *Service) ToolCalls(ctx context.Context, parameters ...*dao.Parameter) ([]*mtask.ToolCall, error) {
	return s.calls.List(ctx, parameters...)
}

// SetPendingApproval parks the call behind an approval record. Terminal calls
// are left untouched.
func (s *Service) SetPendingApproval(ctx context.Context, taskID, callID, approvalID string) (*mtask.ToolCall, error) {
	call, err := s.ToolCall(ctx, taskID, callID)
	if err != nil {
		return nil, err
	}
	if call.Status.IsTerminal() {
		return call, nil
	}
	call.AwaitApproval(approvalID)
	if err := s.calls.Save(ctx, call); err != nil {
		return nil, err
	}
	s.publish(ctx, &event.Context{TaskID: taskID, CallID: callID, ToolPath: call.ToolPath, EventType: event.TypeCallAwaitApproval}, call)
	return call, nil
}

// FinishToolCall applies a terminal call status with the same
// idempotent-on-terminal semantics as MarkFinished.
func (s *Service) FinishToolCall(ctx context.Context, taskID, callID string, status mtask.CallStatus, errMsg string) (*mtask.ToolCall, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("call status %v is not terminal", status)
	}
	call, err := s.ToolCall(ctx, taskID, callID)
	if err != nil {
		return nil, err
	}
	if call.Status.IsTerminal() {
		return call, nil
	}
	call.Finish(status, errMsg)
	if err := s.calls.Save(ctx, call); err != nil {
		return nil, err
	}
	s.publish(ctx, &event.Context{TaskID: taskID, CallID: callID, ToolPath: call.ToolPath, EventType: event.TypeCallFinished}, call)
	return call, nil
}

func (s *Service) publish(ctx context.Context, eventContext *event.Context, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event.NewEvent[any](eventContext, data)); err != nil {
		log.Printf("failed to publish %v event: %v", eventContext.EventType, err)
	}
}
