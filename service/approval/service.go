package approval

import (
	"context"

	"github.com/viant/toolgate/service/dao"
)

// Service defines the approval workflow interface.
type Service interface {
	// Create records a pending approval. The referenced task must exist and
	// the approval ID must be fresh.
	Create(ctx context.Context, approval *Approval) error

	// Approval returns the record by ID, or an error when absent.
	Approval(ctx context.Context, id string) (*Approval, error)

	// ListPending returns unresolved approvals, optionally narrowed by
	// TaskID and ToolPath parameters.
	ListPending(ctx context.Context, parameters ...*dao.Parameter) ([]*Approval, error)

	// Decide resolves a pending approval. Re-resolution of an already decided
	// approval is a no-op returning (nil, nil) so racing reviewers or stale
	// retries never double-apply a decision.
	Decide(ctx context.Context, id string, approved bool, reviewerID, reason string) (*Approval, error)
}
