package policy

import (
	"sort"
	"time"
)

// Evaluate resolves the effective decision for one call against a snapshot of
// the policy graph. The function is deterministic and total: a well-formed
// graph always yields a decision, and repeated evaluation of the same inputs
// yields the same rule.
//
// Resolution order:
//  1. keep bindings that are active, unexpired and in scope; organization
//     scope joins through the bound role's organization,
//  2. collect the rules of every surviving binding's role,
//  3. keep rules whose selector matches the tool path,
//  4. keep rules whose argument conditions all hold,
//  5. order by priority descending, then CreatedAt ascending, then rule ID,
//  6. the first rule is authoritative,
//  7. with no survivor the fallback requires approval unless the tool
//     declares itself auto-approved.
func Evaluate(snapshot *Snapshot, call *CallContext) Decision {
	return EvaluateAt(snapshot, call, time.Now())
}

// EvaluateAt is Evaluate with an explicit notion of "now" for expiry checks,
// used by tests and by callers replaying historical decisions.
func EvaluateAt(snapshot *Snapshot, call *CallContext, now time.Time) Decision {
	if snapshot == nil || call == nil {
		return fallbackDecision(call)
	}

	rolesByID := make(map[string]*Role, len(snapshot.Roles))
	for _, role := range snapshot.Roles {
		if role != nil {
			rolesByID[role.ID] = role
		}
	}

	roleIDs := make(map[string]bool)
	for _, binding := range snapshot.Bindings {
		if bindingApplies(binding, rolesByID[binding.RoleID], call, now) {
			roleIDs[binding.RoleID] = true
		}
	}

	var survivors []*Rule
	for _, rule := range snapshot.Rules {
		if !roleIDs[rule.RoleID] {
			continue
		}
		if !matchesSelector(rule, call) {
			continue
		}
		if !matchesConditions(rule.Conditions, call.Arguments) {
			continue
		}
		survivors = append(survivors, rule)
	}
	if len(survivors) == 0 {
		return fallbackDecision(call)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].Priority != survivors[j].Priority {
			return survivors[i].Priority > survivors[j].Priority
		}
		if !survivors[i].CreatedAt.Equal(survivors[j].CreatedAt) {
			return survivors[i].CreatedAt.Before(survivors[j].CreatedAt)
		}
		return survivors[i].ID < survivors[j].ID
	})

	authoritative := survivors[0]
	return Decision{
		Effect:           authoritative.Effect,
		ApprovalRequired: approvalRequired(authoritative.ApprovalMode, call.ToolDefaultMode),
		RuleID:           authoritative.ID,
	}
}

// bindingApplies checks binding liveness and scope against the call context.
// The role is the binding's resolved role; a binding whose role is absent from
// the snapshot never applies.
func bindingApplies(binding *Binding, role *Role, call *CallContext, now time.Time) bool {
	if binding == nil || role == nil || binding.Status != BindingActive {
		return false
	}
	if binding.ExpiresAt != nil && !binding.ExpiresAt.After(now) {
		return false
	}
	// A client-pinned binding only covers calls issued by that client.
	if binding.ClientID != "" && binding.ClientID != call.ClientID {
		return false
	}
	switch binding.ScopeType {
	case ScopeOrganization:
		return role.OrganizationID == call.OrganizationID
	case ScopeWorkspace:
		return binding.WorkspaceID != "" && binding.WorkspaceID == call.WorkspaceID
	case ScopeAccount:
		return binding.TargetAccountID != "" && binding.TargetAccountID == call.AccountID
	}
	return false
}

// approvalRequired maps a rule approval mode onto the boolean decision,
// resolving inherit through the tool's own declared default.
func approvalRequired(mode, toolDefault ApprovalMode) bool {
	switch mode {
	case ApprovalAuto:
		return false
	case ApprovalRequired:
		return true
	default: // inherit
		return toolDefault != ApprovalAuto
	}
}

// fallbackDecision is the system default when no rule survives: the call is
// allowed but held for approval unless the tool explicitly declares itself
// auto-approved.
func fallbackDecision(call *CallContext) Decision {
	toolDefault := ApprovalInherit
	if call != nil {
		toolDefault = call.ToolDefaultMode
	}
	return Decision{
		Effect:           EffectAllow,
		ApprovalRequired: toolDefault != ApprovalAuto,
	}
}
