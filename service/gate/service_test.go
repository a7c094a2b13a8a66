package gate

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/model/types"
	"github.com/viant/toolgate/policy"
	"github.com/viant/toolgate/service/approval"
	approvalmem "github.com/viant/toolgate/service/approval/memory"
	policysvc "github.com/viant/toolgate/service/policy"
	taskpkg "github.com/viant/toolgate/service/task"
)

type echoInput struct {
	Message string
}

type echoOutput struct {
	Echo string
}

type echoService struct {
	approvalMode string
	calls        int
}

func (s *echoService) Name() string { return "demo" }

func (s *echoService) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:                "echo",
			Input:               reflect.TypeOf(&echoInput{}),
			Output:              reflect.TypeOf(&echoOutput{}),
			DefaultApprovalMode: s.approvalMode,
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
		s.calls++
		output.Echo = input.Message
		return nil
	}, nil
}

type fixture struct {
	tasks     *taskpkg.Service
	policies  *policysvc.Service
	approvals approval.Service
	gate      *Service
	echo      *echoService
}

func newFixture(t *testing.T, approvalMode string) *fixture {
	t.Helper()
	echo := &echoService{approvalMode: approvalMode}
	registry := NewRegistry()
	registry.Register(echo)
	tasks := taskpkg.New()
	policies := policysvc.New()
	approvals := approvalmem.New()
	return &fixture{
		tasks:     tasks,
		policies:  policies,
		approvals: approvals,
		gate:      New(tasks, policies, approvals, registry),
		echo:      echo,
	}
}

func (f *fixture) newTask(t *testing.T, id string) {
	t.Helper()
	_, err := f.tasks.Create(context.Background(), &taskpkg.Submission{
		ID: id, Code: "", RuntimeID: "gofunc", WorkspaceID: "ws-1", ActorID: "actor-1",
	})
	assert.NoError(t, err)
}

func (f *fixture) allowAuto(t *testing.T, toolPath string) {
	t.Helper()
	assert.NoError(t, f.policies.UpsertAccessPolicy(context.Background(), &policy.AccessPolicy{
		RoleName:     "auto",
		Selector:     policy.SelectToolPath,
		ToolPath:     toolPath,
		MatchType:    policy.MatchExact,
		Effect:       policy.EffectAllow,
		ApprovalMode: policy.ApprovalAuto,
		Priority:     10,
		ScopeType:    policy.ScopeOrganization,
	}))
}

func TestInvoke_AutoApprovedToolExecutes(t *testing.T) {
	f := newFixture(t, "")
	f.newTask(t, "task-1")
	f.allowAuto(t, "demo.echo")

	result := f.gate.Invoke(context.Background(), "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindOk, result.Kind)
	output, ok := result.Value.(*echoOutput)
	assert.True(t, ok)
	assert.Equal(t, "hi", output.Echo)

	call, err := f.tasks.ToolCall(context.Background(), "task-1", "call-1")
	assert.NoError(t, err)
	assert.Equal(t, mtask.CallStatusCompleted, call.Status)
}

func TestInvoke_RetriedCompletedCallReplaysWithoutReExecution(t *testing.T) {
	f := newFixture(t, "")
	f.newTask(t, "task-1")
	f.allowAuto(t, "demo.echo")

	first := f.gate.Invoke(context.Background(), "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindOk, first.Kind)
	again := f.gate.Invoke(context.Background(), "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindOk, again.Kind)
	assert.Equal(t, first.Value, again.Value)
	assert.Equal(t, 1, f.echo.calls)
}

func TestInvoke_ApprovalLifecycle(t *testing.T) {
	f := newFixture(t, "")
	f.newTask(t, "task-1")
	ctx := context.Background()

	// Without a matching rule the fallback holds the call for approval.
	pending := f.gate.Invoke(ctx, "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindPending, pending.Kind)
	assert.NotEmpty(t, pending.ApprovalID)

	call, err := f.tasks.ToolCall(ctx, "task-1", "call-1")
	assert.NoError(t, err)
	assert.Equal(t, mtask.CallStatusPendingApproval, call.Status)

	// Re-polling before the decision keeps the call parked.
	stillPending := f.gate.Invoke(ctx, "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindPending, stillPending.Kind)
	assert.Equal(t, pending.ApprovalID, stillPending.ApprovalID)

	_, err = f.approvals.Decide(ctx, pending.ApprovalID, true, "reviewer-1", "")
	assert.NoError(t, err)

	approved := f.gate.Invoke(ctx, "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindOk, approved.Kind)
	output, ok := approved.Value.(*echoOutput)
	assert.True(t, ok)
	assert.Equal(t, "hi", output.Echo)
}

func TestInvoke_ReviewerDenial(t *testing.T) {
	f := newFixture(t, "")
	f.newTask(t, "task-1")
	ctx := context.Background()

	pending := f.gate.Invoke(ctx, "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindPending, pending.Kind)

	_, err := f.approvals.Decide(ctx, pending.ApprovalID, false, "reviewer-1", "not allowed")
	assert.NoError(t, err)

	denied := f.gate.Invoke(ctx, "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindDenied, denied.Kind)
	assert.Equal(t, "not allowed", denied.Message)

	call, err := f.tasks.ToolCall(ctx, "task-1", "call-1")
	assert.NoError(t, err)
	assert.Equal(t, mtask.CallStatusDenied, call.Status)
	assert.Equal(t, 0, f.echo.calls)
}

func TestInvoke_PolicyDeny(t *testing.T) {
	f := newFixture(t, "")
	f.newTask(t, "task-1")
	assert.NoError(t, f.policies.UpsertAccessPolicy(context.Background(), &policy.AccessPolicy{
		RoleName:     "deny-demo",
		Selector:     policy.SelectNamespace,
		Namespace:    "demo",
		Effect:       policy.EffectDeny,
		ApprovalMode: policy.ApprovalAuto,
		Priority:     100,
		ScopeType:    policy.ScopeOrganization,
	}))

	result := f.gate.Invoke(context.Background(), "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindDenied, result.Kind)
	assert.Equal(t, 0, f.echo.calls)
}

func TestInvoke_ToolDeclaredAutoSkipsFallbackApproval(t *testing.T) {
	f := newFixture(t, types.ApprovalAuto)
	f.newTask(t, "task-1")

	result := f.gate.Invoke(context.Background(), "task-1", "call-1", "demo.echo", map[string]interface{}{"Message": "hi"})
	assert.Equal(t, KindOk, result.Kind)
}

func TestInvoke_UnknownToolFails(t *testing.T) {
	f := newFixture(t, "")
	f.newTask(t, "task-1")

	result := f.gate.Invoke(context.Background(), "task-1", "call-1", "nosuch.tool", nil)
	assert.Equal(t, KindFailed, result.Kind)

	call, err := f.tasks.ToolCall(context.Background(), "task-1", "call-1")
	assert.NoError(t, err)
	assert.Equal(t, mtask.CallStatusFailed, call.Status)
}

func TestInvoke_MissingTaskFails(t *testing.T) {
	f := newFixture(t, "")
	result := f.gate.Invoke(context.Background(), "missing", "call-1", "demo.echo", nil)
	assert.Equal(t, KindFailed, result.Kind)
}
