package task

import (
	"fmt"
	"time"

	"github.com/viant/toolgate/internal/clock"
)

// ToolCall records one invocation of a named tool inside a task's execution.
// The (TaskID, CallID) pair is the identity - the runtime's retry loop
// re-issues the same callId until a terminal result arrives, and all retries
// map onto a single record.
type ToolCall struct {
	TaskID      string     `json:"taskId"`
	CallID      string     `json:"callId"`
	WorkspaceID string     `json:"workspaceId,omitempty"`
	ToolPath    string     `json:"toolPath"`
	Status      CallStatus `json:"status"`
	ApprovalID  string     `json:"approvalId,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CallKey builds the storage key for a tool call record.
func CallKey(taskID, callID string) string {
	return fmt.Sprintf("%s/%s", taskID, callID)
}

// Key returns the storage key of this record.
func (c *ToolCall) Key() string {
	return CallKey(c.TaskID, c.CallID)
}

// NewToolCall creates a requested tool-call record.
func NewToolCall(taskID, callID, toolPath string) *ToolCall {
	now := clock.Now()
	return &ToolCall{
		TaskID:    taskID,
		CallID:    callID,
		ToolPath:  toolPath,
		Status:    CallStatusRequested,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AwaitApproval links the call to an approval record.
func (c *ToolCall) AwaitApproval(approvalID string) {
	c.Status = CallStatusPendingApproval
	c.ApprovalID = approvalID
	c.UpdatedAt = clock.Now()
}

// Clone returns a copy the caller can mutate without affecting the original.
func (c *ToolCall) Clone() *ToolCall {
	if c == nil {
		return nil
	}
	clone := *c
	if c.CompletedAt != nil {
		at := *c.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}

// Finish applies a terminal call status.
func (c *ToolCall) Finish(status CallStatus, errMsg string) {
	now := clock.Now()
	c.Status = status
	c.Error = errMsg
	c.CompletedAt = &now
	c.UpdatedAt = now
}
