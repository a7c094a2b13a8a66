package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/messaging/memory"
	taskpkg "github.com/viant/toolgate/service/task"
)

func TestService_dispatchTasks(t *testing.T) {
	ctx := context.Background()
	tasks := taskpkg.New()
	queue := memory.NewQueue[mtask.Task](memory.DefaultConfig())
	scheduler := New(tasks, queue, DefaultConfig())

	_, err := tasks.Create(ctx, &taskpkg.Submission{ID: "t1", Code: "x", RuntimeID: "gofunc"})
	assert.Nil(t, err)

	assert.Nil(t, scheduler.dispatchTasks(ctx))
	message, err := queue.Consume(ctx)
	assert.Nil(t, err)
	assert.Equal(t, "t1", message.T().ID)
	assert.Nil(t, message.Ack())

	// still queued, but already dispatched: no second publish
	assert.Nil(t, scheduler.dispatchTasks(ctx))
	shortCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = queue.Consume(shortCtx)
	assert.NotNil(t, err)

	// once the task leaves queued, the dispatched entry is pruned
	_, err = tasks.MarkRunning(ctx, "t1")
	assert.Nil(t, err)
	assert.Nil(t, scheduler.dispatchTasks(ctx))
	assert.False(t, scheduler.dispatched["t1"])
}

func TestService_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tasks := taskpkg.New()
	queue := memory.NewQueue[mtask.Task](memory.DefaultConfig())
	scheduler := New(tasks, queue, Config{PollingInterval: 5 * time.Millisecond})
	go func() {
		_ = scheduler.Start(ctx)
	}()
	defer scheduler.Shutdown()

	_, err := tasks.Create(ctx, &taskpkg.Submission{ID: "t2", Code: "x", RuntimeID: "gofunc"})
	assert.Nil(t, err)

	consumeCtx, consumeCancel := context.WithTimeout(ctx, time.Second)
	defer consumeCancel()
	message, err := queue.Consume(consumeCtx)
	if assert.Nil(t, err) {
		assert.Equal(t, "t2", message.T().ID)
		assert.Nil(t, message.Ack())
	}
}
