package event

import "time"

// Context identifies what a lifecycle event refers to.
type Context struct {
	TaskID      string `json:"taskID"`
	CallID      string `json:"callID,omitempty"`
	ToolPath    string `json:"toolPath,omitempty"`
	EventType   string `json:"eventType"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Standard lifecycle event types emitted by the task and approval services.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskStarted       = "task.started"
	TypeTaskFinished      = "task.finished"
	TypeCallRequested     = "call.requested"
	TypeCallAwaitApproval = "call.awaitApproval"
	TypeCallFinished      = "call.finished"
	TypeApprovalRequested = "approval.requested"
	TypeApprovalDecided   = "approval.decided"
)

// Event wraps a typed payload with its context and creation time.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event envelope for the supplied payload.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:  context,
		Metadata: make(map[string]interface{}),
		Data:     data,
	}
}
