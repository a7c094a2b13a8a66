// Package policy stores the mutable role/rule/binding graph and hands out
// consistent snapshots to the evaluation engine. Mutations never touch a
// snapshot already taken, so concurrent evaluation can never observe a torn
// graph.
package policy

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/toolgate/internal/clock"
	"github.com/viant/toolgate/internal/idgen"
	apolicy "github.com/viant/toolgate/policy"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/dao/store"
)

// Service manages the policy graph. Roles, rules and bindings live in their
// own keyed stores; all graph mutation and the Snapshot copy happen under one
// service-level lock.
type Service struct {
	mu       sync.RWMutex
	roles    dao.Service[string, apolicy.Role]
	rules    dao.Service[string, apolicy.Rule]
	bindings dao.Service[string, apolicy.Binding]
}

// New creates a policy graph service backed by in-memory stores.
func New() *Service {
	return &Service{
		roles:    store.NewMemoryStore[string, apolicy.Role](func(r *apolicy.Role) string { return r.ID }),
		rules:    store.NewMemoryStore[string, apolicy.Rule](func(r *apolicy.Rule) string { return r.ID }),
		bindings: store.NewMemoryStore[string, apolicy.Binding](func(b *apolicy.Binding) string { return b.ID }),
	}
}

// SaveRole inserts or updates a role, assigning an ID when absent.
func (s *Service) SaveRole(ctx context.Context, role *apolicy.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRole(ctx, role)
}

func (s *Service) saveRole(ctx context.Context, role *apolicy.Role) error {
	if role == nil {
		return dao.ErrNilEntity
	}
	if role.ID == "" {
		role.ID = idgen.New()
	}
	return s.roles.Save(ctx, role)
}

// SaveRule inserts or updates a rule. New rules get an ID and a CreatedAt
// stamp; CreatedAt is preserved on update so priority tie-breaks stay stable.
func (s *Service) SaveRule(ctx context.Context, rule *apolicy.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRule(ctx, rule)
}

func (s *Service) saveRule(ctx context.Context, rule *apolicy.Rule) error {
	if rule == nil {
		return dao.ErrNilEntity
	}
	if rule.RoleID == "" {
		return fmt.Errorf("rule %v missing roleId", rule.ID)
	}
	if rule.ID == "" {
		rule.ID = idgen.New()
	}
	if rule.CreatedAt.IsZero() {
		prev, err := s.rules.Load(ctx, rule.ID)
		if err != nil {
			return err
		}
		if prev != nil {
			rule.CreatedAt = prev.CreatedAt
		} else {
			rule.CreatedAt = clock.Now()
		}
	}
	return s.rules.Save(ctx, rule)
}

// SaveBinding inserts or updates a binding, defaulting status to active.
func (s *Service) SaveBinding(ctx context.Context, binding *apolicy.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveBinding(ctx, binding)
}

func (s *Service) saveBinding(ctx context.Context, binding *apolicy.Binding) error {
	if binding == nil {
		return dao.ErrNilEntity
	}
	if binding.RoleID == "" {
		return fmt.Errorf("binding %v missing roleId", binding.ID)
	}
	if binding.ID == "" {
		binding.ID = idgen.New()
	}
	if binding.Status == "" {
		binding.Status = apolicy.BindingActive
	}
	return s.bindings.Save(ctx, binding)
}

// DeleteRole removes a role together with its rules and bindings.
func (s *Service) DeleteRole(ctx context.Context, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rules, err := s.rules.List(ctx)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if rule.RoleID != roleID {
			continue
		}
		if err := s.rules.Delete(ctx, rule.ID); err != nil {
			return err
		}
	}
	bindings, err := s.bindings.List(ctx)
	if err != nil {
		return err
	}
	for _, binding := range bindings {
		if binding.RoleID != roleID {
			continue
		}
		if err := s.bindings.Delete(ctx, binding.ID); err != nil {
			return err
		}
	}
	return s.roles.Delete(ctx, roleID)
}

// DeleteRule removes a single rule.
func (s *Service) DeleteRule(ctx context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Delete(ctx, ruleID)
}

// DeleteBinding removes a single binding.
func (s *Service) DeleteBinding(ctx context.Context, bindingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindings.Delete(ctx, bindingID)
}

// Snapshot copies the whole graph under one read lock. Evaluation works
// against the returned copy and is unaffected by later mutation.
func (s *Service) Snapshot(ctx context.Context) (*apolicy.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	bindings, err := s.bindings.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := &apolicy.Snapshot{
		Roles:    make([]*apolicy.Role, 0, len(roles)),
		Rules:    make([]*apolicy.Rule, 0, len(rules)),
		Bindings: make([]*apolicy.Binding, 0, len(bindings)),
	}
	for _, role := range roles {
		cloned := *role
		snapshot.Roles = append(snapshot.Roles, &cloned)
	}
	for _, rule := range rules {
		cloned := *rule
		cloned.Conditions = append([]apolicy.Condition(nil), rule.Conditions...)
		snapshot.Rules = append(snapshot.Rules, &cloned)
	}
	for _, binding := range bindings {
		cloned := *binding
		snapshot.Bindings = append(snapshot.Bindings, &cloned)
	}
	return snapshot, nil
}

// AccessPolicies returns the flattened (role x rule x binding) projection in
// deterministic order.
func (s *Service) AccessPolicies(ctx context.Context) ([]*apolicy.AccessPolicy, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return apolicy.Flatten(snapshot), nil
}

// Evaluate resolves the effective decision for one call against a fresh
// snapshot of the graph.
func (s *Service) Evaluate(ctx context.Context, call *apolicy.CallContext) (*apolicy.Decision, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	decision := apolicy.Evaluate(snapshot, call)
	return &decision, nil
}

// UpsertAccessPolicy applies one flattened row as a single mutation: the
// role, rule and binding it names are written under one lock, so a snapshot
// taken concurrently sees either none or all of them. Missing IDs are
// generated, so a zero-ID row creates a complete role/rule/binding chain.
func (s *Service) UpsertAccessPolicy(ctx context.Context, view *apolicy.AccessPolicy) error {
	if view == nil {
		return dao.ErrNilEntity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	role := &apolicy.Role{
		ID:             view.RoleID,
		OrganizationID: view.OrganizationID,
		Name:           view.RoleName,
	}
	if err := s.saveRole(ctx, role); err != nil {
		return err
	}
	view.RoleID = role.ID

	rule := &apolicy.Rule{
		ID:           view.RuleID,
		RoleID:       role.ID,
		Selector:     view.Selector,
		SourceKey:    view.SourceKey,
		Namespace:    view.Namespace,
		ToolPath:     view.ToolPath,
		MatchType:    view.MatchType,
		Effect:       view.Effect,
		ApprovalMode: view.ApprovalMode,
		Conditions:   append([]apolicy.Condition(nil), view.Conditions...),
		Priority:     view.Priority,
	}
	if err := s.saveRule(ctx, rule); err != nil {
		return err
	}
	view.RuleID = rule.ID

	binding := &apolicy.Binding{
		ID:              view.BindingID,
		RoleID:          role.ID,
		ScopeType:       view.ScopeType,
		WorkspaceID:     view.WorkspaceID,
		TargetAccountID: view.TargetAccountID,
		ClientID:        view.ClientID,
		Status:          view.BindingStatus,
	}
	if err := s.saveBinding(ctx, binding); err != nil {
		return err
	}
	view.BindingID = binding.ID
	return nil
}
