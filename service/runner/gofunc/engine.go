// Package gofunc provides an engine whose "code" is a registered Go
// function. Tasks address a function by name through their Code field. It is
// primarily used by tests and embedded deployments where the submitted logic
// is compiled in rather than interpreted.
package gofunc

import (
	"context"
	"fmt"
	"sync"

	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/runner"
)

// RuntimeID is the runtime identifier tasks use to select this engine.
const RuntimeID = "gofunc"

// Func is an embedded task body. The capability object is its only way to
// produce external effects.
type Func func(ctx context.Context, tools *runner.Capability) (interface{}, error)

// Engine dispatches task code names to registered functions.
type Engine struct {
	mux   sync.RWMutex
	funcs map[string]Func
}

func New() *Engine {
	return &Engine{funcs: make(map[string]Func)}
}

// Register binds a function name callable through a task's Code field.
func (e *Engine) Register(name string, fn Func) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.funcs[name] = fn
}

// Execute runs the function the task's Code field names.
func (e *Engine) Execute(ctx context.Context, aTask *mtask.Task, tools *runner.Capability) (interface{}, error) {
	e.mux.RLock()
	fn, ok := e.funcs[aTask.Code]
	e.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("function %q not registered", aTask.Code)
	}
	return fn(ctx, tools)
}
