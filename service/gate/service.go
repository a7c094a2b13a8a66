package gate

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/viant/structology/conv"
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/internal/idgen"
	"github.com/viant/toolgate/policy"
	"github.com/viant/toolgate/service/approval"
	taskpkg "github.com/viant/toolgate/service/task"
)

// Evaluator resolves a policy decision for one call context.
type Evaluator interface {
	Evaluate(ctx context.Context, call *policy.CallContext) (*policy.Decision, error)
}

// Service is the execution adapter. It owns the tool-call record for every
// invocation: it consults policy, parks calls behind approvals and executes
// allowed tools, reporting every transition to the task layer.
type Service struct {
	tasks     *taskpkg.Service
	policies  Evaluator
	approvals approval.Service
	registry  *Registry
	converter *conv.Converter

	retryAfterMs *int

	// completed Ok values kept so retried calls replay the original result
	// instead of re-executing the tool.
	mu      sync.Mutex
	results map[string]*Result
}

// Option customises the adapter.
type Option func(*Service)

// WithRetryAfterMs sets the backoff hint attached to Pending results.
func WithRetryAfterMs(ms int) Option {
	return func(s *Service) { s.retryAfterMs = &ms }
}

// New creates the execution adapter.
func New(tasks *taskpkg.Service, policies Evaluator, approvals approval.Service, registry *Registry, opts ...Option) *Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	ret := &Service{
		tasks:     tasks,
		policies:  policies,
		approvals: approvals,
		registry:  registry,
		converter: conv.NewConverter(options),
		results:   make(map[string]*Result),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Registry returns the tool registry backing this adapter.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Invoke handles one tool call attempt. All outcomes, including internal
// failures, are expressed through the four-way Result so the caller's retry
// loop never needs a second error channel.
func (s *Service) Invoke(ctx context.Context, taskID, callID, toolPath string, input map[string]interface{}) *Result {
	aTask, err := s.tasks.Task(ctx, taskID)
	if err != nil {
		return Failed(fmt.Sprintf("task %v not found", taskID))
	}
	if input == nil {
		input = map[string]interface{}{}
	}

	call, err := s.tasks.RequestToolCall(ctx, taskID, callID, toolPath)
	if err != nil {
		return Failed(err.Error())
	}

	switch call.Status {
	case mtask.CallStatusCompleted:
		return s.replay(call)
	case mtask.CallStatusDenied:
		return Denied(call.Error)
	case mtask.CallStatusFailed:
		return Failed(call.Error)
	case mtask.CallStatusPendingApproval:
		return s.checkApproval(ctx, aTask, call, input)
	}

	tool, err := s.registry.Tool(toolPath)
	if err != nil {
		return s.fail(ctx, call, err.Error())
	}

	decision, err := s.policies.Evaluate(ctx, &policy.CallContext{
		OrganizationID:  aTask.OrganizationID,
		WorkspaceID:     aTask.WorkspaceID,
		AccountID:       aTask.ActorID,
		ClientID:        aTask.ClientID,
		SourceKey:       tool.SourceKey,
		ToolPath:        toolPath,
		Arguments:       input,
		ToolDefaultMode: toolDefaultMode(tool),
	})
	if err != nil {
		return s.fail(ctx, call, fmt.Sprintf("policy evaluation failed: %v", err))
	}

	if decision.Effect == policy.EffectDeny {
		return s.deny(ctx, call, "denied by policy")
	}
	if decision.ApprovalRequired {
		return s.requestApproval(ctx, aTask, call, input)
	}
	return s.execute(ctx, call, tool, input)
}

// checkApproval re-polls the approval a parked call is waiting on.
func (s *Service) checkApproval(ctx context.Context, aTask *mtask.Task, call *mtask.ToolCall, input map[string]interface{}) *Result {
	anApproval, err := s.approvals.Approval(ctx, call.ApprovalID)
	if err != nil {
		return Failed(fmt.Sprintf("approval %v not found", call.ApprovalID))
	}
	switch anApproval.Status {
	case approval.StatusPending:
		return Pending(anApproval.ID, s.retryAfterMs)
	case approval.StatusDenied:
		reason := anApproval.Reason
		if reason == "" {
			reason = fmt.Sprintf("tool call %v denied", call.ToolPath)
		}
		return s.deny(ctx, call, reason)
	}
	tool, err := s.registry.Tool(call.ToolPath)
	if err != nil {
		return s.fail(ctx, call, err.Error())
	}
	return s.execute(ctx, call, tool, input)
}

// requestApproval creates the approval gate and parks the call behind it.
func (s *Service) requestApproval(ctx context.Context, aTask *mtask.Task, call *mtask.ToolCall, input map[string]interface{}) *Result {
	anApproval := &approval.Approval{
		ID:       idgen.New(),
		TaskID:   aTask.ID,
		ToolPath: call.ToolPath,
		Input:    input,
	}
	if err := s.approvals.Create(ctx, anApproval); err != nil {
		return Failed(fmt.Sprintf("failed to request approval: %v", err))
	}
	if _, err := s.tasks.SetPendingApproval(ctx, call.TaskID, call.CallID, anApproval.ID); err != nil {
		return Failed(err.Error())
	}
	return Pending(anApproval.ID, s.retryAfterMs)
}

// execute runs the tool and records the terminal outcome.
func (s *Service) execute(ctx context.Context, call *mtask.ToolCall, tool *Tool, input map[string]interface{}) *Result {
	typedInput, err := s.typedValue(tool.Signature.Input, input)
	if err != nil {
		return s.fail(ctx, call, fmt.Sprintf("invalid input for %v: %v", tool.Path, err))
	}
	output := newInstancePtr(tool.Signature.Output)
	if err := tool.Executable(ctx, typedInput, output); err != nil {
		return s.fail(ctx, call, err.Error())
	}
	result := Ok(output)
	s.mu.Lock()
	s.results[call.Key()] = result
	s.mu.Unlock()
	if _, err := s.tasks.FinishToolCall(ctx, call.TaskID, call.CallID, mtask.CallStatusCompleted, ""); err != nil {
		log.Printf("failed to finish tool call %v: %v", call.Key(), err)
	}
	return result
}

// replay returns the cached value of an already completed call, so retries
// after a missed response stay observationally idempotent.
func (s *Service) replay(call *mtask.ToolCall) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result, ok := s.results[call.Key()]; ok {
		return result
	}
	return OkNoValue()
}

func (s *Service) deny(ctx context.Context, call *mtask.ToolCall, reason string) *Result {
	if _, err := s.tasks.FinishToolCall(ctx, call.TaskID, call.CallID, mtask.CallStatusDenied, reason); err != nil {
		log.Printf("failed to finish tool call %v: %v", call.Key(), err)
	}
	return Denied(reason)
}

func (s *Service) fail(ctx context.Context, call *mtask.ToolCall, message string) *Result {
	if _, err := s.tasks.FinishToolCall(ctx, call.TaskID, call.CallID, mtask.CallStatusFailed, message); err != nil {
		log.Printf("failed to finish tool call %v: %v", call.Key(), err)
	}
	return Failed(message)
}

func (s *Service) typedValue(aType reflect.Type, value interface{}) (interface{}, error) {
	instance := newInstancePtr(aType)
	err := s.converter.Convert(value, instance)
	return instance, err
}

// newInstancePtr creates a new instance pointer of the given type.
func newInstancePtr(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

func toolDefaultMode(tool *Tool) policy.ApprovalMode {
	switch tool.Signature.DefaultApprovalMode {
	case "auto":
		return policy.ApprovalAuto
	case "required":
		return policy.ApprovalRequired
	}
	return policy.ApprovalInherit
}
