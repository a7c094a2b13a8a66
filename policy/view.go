package policy

import "sort"

// AccessPolicy is the flattened (role x rule x binding) projection used by
// read paths and the legacy single-mutation upsert API. It is derived from
// the three normalized record sets and never persisted on its own.
type AccessPolicy struct {
	RoleID          string        `json:"roleId"`
	RoleName        string        `json:"roleName"`
	OrganizationID  string        `json:"organizationId"`
	RuleID          string        `json:"ruleId"`
	Selector        SelectorKind  `json:"selector"`
	SourceKey       string        `json:"sourceKey,omitempty"`
	Namespace       string        `json:"namespace,omitempty"`
	ToolPath        string        `json:"toolPath,omitempty"`
	MatchType       MatchType     `json:"matchType,omitempty"`
	Effect          Effect        `json:"effect"`
	ApprovalMode    ApprovalMode  `json:"approvalMode"`
	Conditions      []Condition   `json:"conditions,omitempty"`
	Priority        int           `json:"priority"`
	BindingID       string        `json:"bindingId"`
	ScopeType       ScopeType     `json:"scopeType"`
	WorkspaceID     string        `json:"workspaceId,omitempty"`
	TargetAccountID string        `json:"targetAccountId,omitempty"`
	ClientID        string        `json:"clientId,omitempty"`
	BindingStatus   BindingStatus `json:"bindingStatus"`
}

// Flatten materialises the Cartesian join of each role's rules and bindings.
// Ordering is deterministic: role ID, rule priority descending, rule ID,
// then binding ID.
func Flatten(snapshot *Snapshot) []*AccessPolicy {
	if snapshot == nil {
		return nil
	}
	rolesByID := make(map[string]*Role, len(snapshot.Roles))
	for _, role := range snapshot.Roles {
		rolesByID[role.ID] = role
	}
	rulesByRole := make(map[string][]*Rule)
	for _, rule := range snapshot.Rules {
		rulesByRole[rule.RoleID] = append(rulesByRole[rule.RoleID], rule)
	}
	bindingsByRole := make(map[string][]*Binding)
	for _, binding := range snapshot.Bindings {
		bindingsByRole[binding.RoleID] = append(bindingsByRole[binding.RoleID], binding)
	}

	var result []*AccessPolicy
	for _, role := range snapshot.Roles {
		rules := rulesByRole[role.ID]
		bindings := bindingsByRole[role.ID]
		for _, rule := range rules {
			for _, binding := range bindings {
				result = append(result, &AccessPolicy{
					RoleID:          role.ID,
					RoleName:        role.Name,
					OrganizationID:  role.OrganizationID,
					RuleID:          rule.ID,
					Selector:        rule.Selector,
					SourceKey:       rule.SourceKey,
					Namespace:       rule.Namespace,
					ToolPath:        rule.ToolPath,
					MatchType:       rule.MatchType,
					Effect:          rule.Effect,
					ApprovalMode:    rule.ApprovalMode,
					Conditions:      append([]Condition(nil), rule.Conditions...),
					Priority:        rule.Priority,
					BindingID:       binding.ID,
					ScopeType:       binding.ScopeType,
					WorkspaceID:     binding.WorkspaceID,
					TargetAccountID: binding.TargetAccountID,
					ClientID:        binding.ClientID,
					BindingStatus:   binding.Status,
				})
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].RoleID != result[j].RoleID {
			return result[i].RoleID < result[j].RoleID
		}
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		if result[i].RuleID != result[j].RuleID {
			return result[i].RuleID < result[j].RuleID
		}
		return result[i].BindingID < result[j].BindingID
	})
	return result
}
