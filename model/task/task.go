package task

import (
	"time"

	"github.com/viant/toolgate/internal/clock"
)

// DefaultTimeoutMs is applied when a submission does not specify a timeout.
const DefaultTimeoutMs = 300_000

// Task represents one submission of generated code. A task is created once,
// mutated only through the state-machine operations in service/task and never
// deleted by this core.
type Task struct {
	ID             string                 `json:"id"`
	Code           string                 `json:"code"`
	RuntimeID      string                 `json:"runtimeId"`
	OrganizationID string                 `json:"organizationId,omitempty"`
	WorkspaceID    string                 `json:"workspaceId"`
	ActorID        string                 `json:"actorId"`
	ClientID       string                 `json:"clientId,omitempty"`
	Status         Status                 `json:"status"`
	TimeoutMs      int                    `json:"timeoutMs"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Result         interface{}            `json:"result,omitempty"`
	Error          string                 `json:"error,omitempty"`
	ExitCode       *int                   `json:"exitCode,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	StartedAt      *time.Time             `json:"startedAt,omitempty"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// New creates a queued task record.
func New(id, code, runtimeID string) *Task {
	now := clock.Now()
	return &Task{
		ID:        id,
		Code:      code,
		RuntimeID: runtimeID,
		Status:    StatusQueued,
		TimeoutMs: DefaultTimeoutMs,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Timeout returns the task deadline as a duration.
func (t *Task) Timeout() time.Duration {
	ms := t.TimeoutMs
	if ms <= 0 {
		ms = DefaultTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// Start marks the task as running. StartedAt is sticky - once recorded it is
// never overwritten by a repeated transition.
func (t *Task) Start() {
	now := clock.Now()
	if t.StartedAt == nil {
		t.StartedAt = &now
	}
	t.Status = StatusRunning
	t.UpdatedAt = now
}

// Finish applies a terminal status together with its outcome detail.
func (t *Task) Finish(status Status, exitCode *int, errMsg string) {
	now := clock.Now()
	t.Status = status
	t.ExitCode = exitCode
	t.Error = errMsg
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// Clone returns a copy the caller can mutate without affecting the original.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(t.Metadata))
		for k, v := range t.Metadata {
			clone.Metadata[k] = v
		}
	}
	if t.ExitCode != nil {
		code := *t.ExitCode
		clone.ExitCode = &code
	}
	if t.StartedAt != nil {
		at := *t.StartedAt
		clone.StartedAt = &at
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}
