package approval

import "time"

// Status of an approval record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

// IsResolved reports whether a decision has been recorded.
func (s Status) IsResolved() bool {
	return s == StatusApproved || s == StatusDenied
}

// Approval is a decision gate for one tool call. The ID is caller-chosen and
// must be fresh; creation with a reused ID is an error, and resolution
// succeeds at most once.
type Approval struct {
	ID         string                 `json:"id"`
	TaskID     string                 `json:"taskId"`
	ToolPath   string                 `json:"toolPath"`
	Input      map[string]interface{} `json:"input,omitempty"` // call arguments for reviewer inspection
	Status     Status                 `json:"status"`
	ReviewerID string                 `json:"reviewerId,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	ExpiresAt  *time.Time             `json:"expiresAt,omitempty"`
	ResolvedAt *time.Time             `json:"resolvedAt,omitempty"`
}

// Clone returns a copy the caller can mutate without affecting the original.
func (a *Approval) Clone() *Approval {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Input != nil {
		clone.Input = make(map[string]interface{}, len(a.Input))
		for k, v := range a.Input {
			clone.Input[k] = v
		}
	}
	if a.ExpiresAt != nil {
		at := *a.ExpiresAt
		clone.ExpiresAt = &at
	}
	if a.ResolvedAt != nil {
		at := *a.ResolvedAt
		clone.ResolvedAt = &at
	}
	return &clone
}

// Expired reports whether the approval carries a deadline already passed.
func (a *Approval) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}
