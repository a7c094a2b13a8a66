package task

// Status represents the current lifecycle state of a task.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	StatusDenied    Status = "denied"
)

// IsTerminal reports whether no further transition may be applied.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimedOut, StatusDenied:
		return true
	}
	return false
}

// CallStatus represents the current state of a tool call.
type CallStatus string

const (
	CallStatusRequested       CallStatus = "requested"
	CallStatusPendingApproval CallStatus = "pending_approval"
	CallStatusCompleted       CallStatus = "completed"
	CallStatusFailed          CallStatus = "failed"
	CallStatusDenied          CallStatus = "denied"
)

// IsTerminal reports whether the call reached a final state.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusFailed, CallStatusDenied:
		return true
	}
	return false
}

func (s CallStatus) IsPendingApproval() bool {
	return s == CallStatusPendingApproval
}
