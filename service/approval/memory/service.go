// Package memory provides the in-memory approval service implementation.
package memory

import (
	"context"
	"fmt"

	"github.com/viant/toolgate/internal/clock"
	mtask "github.com/viant/toolgate/model/task"
	"github.com/viant/toolgate/service/approval"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/dao/store"
	"github.com/viant/toolgate/service/event"
)

type service struct {
	approvals dao.Service[string, approval.Approval]

	// owning task store (optional - used to verify the referenced task exists
	// before accepting a new approval).
	tasks  dao.Service[string, mtask.Task]
	events *event.Service
}

type Option func(*service)

// WithTaskStore lets the approval service verify the referenced task exists.
func WithTaskStore(tasks dao.Service[string, mtask.Task]) Option {
	return func(s *service) { s.tasks = tasks }
}

// WithApprovalStore overrides the approval record store.
func WithApprovalStore(approvals dao.Service[string, approval.Approval]) Option {
	return func(s *service) { s.approvals = approvals }
}

// WithEvents wires lifecycle event publishing.
func WithEvents(events *event.Service) Option {
	return func(s *service) { s.events = events }
}

func New(options ...Option) approval.Service {
	ret := &service{}
	for _, option := range options {
		option(ret)
	}
	if ret.approvals == nil {
		ret.approvals = store.NewMemoryStoreWithStatus[string, approval.Approval](
			func(a *approval.Approval) string { return a.ID },
			func(a *approval.Approval) string { return string(a.Status) }).
			WithCloner((*approval.Approval).Clone)
	}
	return ret
}

func (s *service) Create(ctx context.Context, anApproval *approval.Approval) error {
	if anApproval == nil {
		return dao.ErrNilEntity
	}
	if anApproval.ID == "" {
		return dao.ErrInvalidID
	}
	if s.tasks != nil {
		aTask, err := s.tasks.Load(ctx, anApproval.TaskID)
		if err != nil {
			return err
		}
		if aTask == nil {
			return fmt.Errorf("task %v: %w", anApproval.TaskID, dao.ErrNotFound)
		}
	}
	anApproval.Status = approval.StatusPending
	if anApproval.CreatedAt.IsZero() {
		anApproval.CreatedAt = clock.Now()
	}
	if err := s.approvals.Create(ctx, anApproval); err != nil {
		return fmt.Errorf("failed to create approval %v: %w", anApproval.ID, err)
	}
	s.publish(ctx, event.TypeApprovalRequested, anApproval)
	return nil
}

func (s *service) Approval(ctx context.Context, id string) (*approval.Approval, error) {
	anApproval, err := s.approvals.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if anApproval == nil {
		return nil, fmt.Errorf("approval %v: %w", id, dao.ErrNotFound)
	}
	return anApproval, nil
}

func (s *service) ListPending(ctx context.Context, parameters ...*dao.Parameter) ([]*approval.Approval, error) {
	pending, err := s.approvals.List(ctx, dao.NewParameter("Status", string(approval.StatusPending)))
	if err != nil {
		return nil, err
	}
	taskID, toolPath := "", ""
	for _, parameter := range parameters {
		value, _ := parameter.Value.(string)
		switch parameter.Name {
		case "TaskID":
			taskID = value
		case "ToolPath":
			toolPath = value
		}
	}
	if taskID == "" && toolPath == "" {
		return pending, nil
	}
	filtered := make([]*approval.Approval, 0, len(pending))
	for _, anApproval := range pending {
		if taskID != "" && anApproval.TaskID != taskID {
			continue
		}
		if toolPath != "" && anApproval.ToolPath != toolPath {
			continue
		}
		filtered = append(filtered, anApproval)
	}
	return filtered, nil
}

// Decide resolves a pending approval at most once. The runtime's retry loop
// observes the outcome by re-polling the adapter, not via push.
func (s *service) Decide(ctx context.Context, id string, approved bool, reviewerID, reason string) (*approval.Approval, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	anApproval, err := s.Approval(ctx, id)
	if err != nil {
		return nil, err
	}
	if anApproval.Status.IsResolved() {
		return nil, nil
	}
	now := clock.Now()
	if approved {
		anApproval.Status = approval.StatusApproved
	} else {
		anApproval.Status = approval.StatusDenied
	}
	anApproval.ReviewerID = reviewerID
	anApproval.Reason = reason
	anApproval.ResolvedAt = &now
	if err := s.approvals.Save(ctx, anApproval); err != nil {
		return nil, err
	}
	s.publish(ctx, event.TypeApprovalDecided, anApproval)
	return anApproval, nil
}

func (s *service) publish(ctx context.Context, eventType string, anApproval *approval.Approval) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, event.NewEvent[any](&event.Context{
		TaskID:    anApproval.TaskID,
		ToolPath:  anApproval.ToolPath,
		EventType: eventType,
	}, anApproval))
}

var _ approval.Service = (*service)(nil)
