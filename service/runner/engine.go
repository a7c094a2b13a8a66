package runner

import (
	"context"
	"sync"

	mtask "github.com/viant/toolgate/model/task"
)

// Engine executes one task's code. The capability object is the only surface
// through which the code may produce external effects.
type Engine interface {
	Execute(ctx context.Context, aTask *mtask.Task, tools *Capability) (interface{}, error)
}

// Engines maps runtime identifiers carried by tasks onto engines.
type Engines struct {
	mux       sync.RWMutex
	byRuntime map[string]Engine
}

// NewEngines creates an empty engine registry.
func NewEngines() *Engines {
	return &Engines{byRuntime: make(map[string]Engine)}
}

// Register adds an engine under a runtime identifier.
func (e *Engines) Register(runtimeID string, engine Engine) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.byRuntime[runtimeID] = engine
}

// Lookup returns the engine for a runtime identifier, or nil.
func (e *Engines) Lookup(runtimeID string) Engine {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.byRuntime[runtimeID]
}
