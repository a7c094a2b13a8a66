package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/approval"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/dao/store"
)

func newTaskStore(t *testing.T, taskIDs ...string) dao.Service[string, mtask.Task] {
	t.Helper()
	tasks := store.NewMemoryStore[string, mtask.Task](func(aTask *mtask.Task) string { return aTask.ID })
	for _, id := range taskIDs {
		assert.NoError(t, tasks.Save(context.Background(), mtask.New(id, "", "script")))
	}
	return tasks
}

func TestService_CreateRequiresTaskAndFreshID(t *testing.T) {
	svc := New(WithTaskStore(newTaskStore(t, "task-1")))
	ctx := context.Background()

	err := svc.Create(ctx, &approval.Approval{ID: "approval-1", TaskID: "task-1", ToolPath: "admin.delete_data"})
	assert.NoError(t, err)

	err = svc.Create(ctx, &approval.Approval{ID: "approval-1", TaskID: "task-1", ToolPath: "admin.delete_data"})
	assert.ErrorIs(t, err, dao.ErrAlreadyExists)

	err = svc.Create(ctx, &approval.Approval{ID: "approval-2", TaskID: "missing", ToolPath: "admin.delete_data"})
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestService_DecideResolvesOnce(t *testing.T) {
	svc := New(WithTaskStore(newTaskStore(t, "task-1")))
	ctx := context.Background()

	err := svc.Create(ctx, &approval.Approval{ID: "approval-1", TaskID: "task-1", ToolPath: "admin.delete_data"})
	assert.NoError(t, err)

	decided, err := svc.Decide(ctx, "approval-1", false, "reviewer-1", "too risky")
	assert.NoError(t, err)
	assert.Equal(t, approval.StatusDenied, decided.Status)
	assert.Equal(t, "reviewer-1", decided.ReviewerID)
	assert.NotNil(t, decided.ResolvedAt)

	// A second reviewer racing the first gets a nil no-op, and the original
	// decision is untouched.
	again, err := svc.Decide(ctx, "approval-1", true, "reviewer-2", "")
	assert.NoError(t, err)
	assert.Nil(t, again)

	current, err := svc.Approval(ctx, "approval-1")
	assert.NoError(t, err)
	assert.Equal(t, approval.StatusDenied, current.Status)
	assert.Equal(t, "too risky", current.Reason)
}

func TestService_ListPending(t *testing.T) {
	svc := New(WithTaskStore(newTaskStore(t, "task-1")))
	ctx := context.Background()

	assert.NoError(t, svc.Create(ctx, &approval.Approval{ID: "approval-1", TaskID: "task-1", ToolPath: "a.b"}))
	assert.NoError(t, svc.Create(ctx, &approval.Approval{ID: "approval-2", TaskID: "task-1", ToolPath: "a.c"}))

	_, err := svc.Decide(ctx, "approval-1", true, "reviewer-1", "")
	assert.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, "approval-2", pending[0].ID)
}
