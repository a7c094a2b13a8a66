package policy

import "time"

// Effect is the allow/deny outcome of a matched rule.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// ApprovalMode controls whether a matched rule requires human sign-off.
type ApprovalMode string

const (
	// ApprovalInherit defers to the tool's own declared default mode.
	ApprovalInherit ApprovalMode = "inherit"
	// ApprovalAuto executes without human review.
	ApprovalAuto ApprovalMode = "auto"
	// ApprovalRequired blocks the call until a reviewer decides.
	ApprovalRequired ApprovalMode = "required"
)

// SelectorKind identifies the matching criterion carried by a rule. The
// selector fields on Rule are mutually exclusive - only the field implied by
// the kind is populated.
type SelectorKind string

const (
	SelectAll       SelectorKind = "all"
	SelectSourceKey SelectorKind = "sourceKey"
	SelectNamespace SelectorKind = "namespace"
	SelectToolPath  SelectorKind = "toolPath"
)

// MatchType selects glob or exact semantics for path patterns.
type MatchType string

const (
	MatchGlob  MatchType = "glob"
	MatchExact MatchType = "exact"
)

// Operator compares a call argument against a rule condition value.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
)

// ScopeType narrows where a binding applies.
type ScopeType string

const (
	ScopeOrganization ScopeType = "organization"
	ScopeWorkspace    ScopeType = "workspace"
	ScopeAccount      ScopeType = "account"
)

// BindingStatus enables or disables a binding without deleting it.
type BindingStatus string

const (
	BindingActive   BindingStatus = "active"
	BindingDisabled BindingStatus = "disabled"
)

// Role groups rules under one named, bindable unit.
type Role struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organizationId" yaml:"organizationId"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Condition constrains a rule to calls whose named argument satisfies the
// operator. Arguments are compared by their string representation.
type Condition struct {
	Key      string   `json:"key" yaml:"key"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value" yaml:"value"`
}

// Rule decides effect and approval mode for tool paths matched by its
// selector. Higher priority wins; ties break on the earliest CreatedAt.
type Rule struct {
	ID           string       `json:"id" yaml:"id"`
	RoleID       string       `json:"roleId" yaml:"roleId"`
	Selector     SelectorKind `json:"selector" yaml:"selector"`
	SourceKey    string       `json:"sourceKey,omitempty" yaml:"sourceKey,omitempty"`
	Namespace    string       `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	ToolPath     string       `json:"toolPath,omitempty" yaml:"toolPath,omitempty"`
	MatchType    MatchType    `json:"matchType,omitempty" yaml:"matchType,omitempty"`
	Effect       Effect       `json:"effect" yaml:"effect"`
	ApprovalMode ApprovalMode `json:"approvalMode" yaml:"approvalMode"`
	Conditions   []Condition  `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Priority     int          `json:"priority" yaml:"priority"`
	CreatedAt    time.Time    `json:"createdAt" yaml:"createdAt"`
}

// Binding attaches a role to an organization, workspace or account scope.
type Binding struct {
	ID              string        `json:"id" yaml:"id"`
	RoleID          string        `json:"roleId" yaml:"roleId"`
	ScopeType       ScopeType     `json:"scopeType" yaml:"scopeType"`
	WorkspaceID     string        `json:"workspaceId,omitempty" yaml:"workspaceId,omitempty"`
	TargetAccountID string        `json:"targetAccountId,omitempty" yaml:"targetAccountId,omitempty"`
	ClientID        string        `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	Status          BindingStatus `json:"status" yaml:"status"`
	ExpiresAt       *time.Time    `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

// Snapshot is a consistent, read-only copy of the policy graph taken before
// evaluation so that concurrent mutation can never expose a torn graph.
type Snapshot struct {
	Roles    []*Role    `json:"roles" yaml:"roles"`
	Rules    []*Rule    `json:"rules" yaml:"rules"`
	Bindings []*Binding `json:"bindings" yaml:"bindings"`
}

// CallContext describes one tool invocation to be authorised.
type CallContext struct {
	OrganizationID string
	WorkspaceID    string
	AccountID      string
	ClientID       string
	SourceKey      string
	ToolPath       string
	Arguments      map[string]interface{}
	// ToolDefaultMode is the approval mode declared by the tool definition
	// itself; rules with ApprovalInherit defer to it.
	ToolDefaultMode ApprovalMode
}

// Decision is the effective outcome of policy resolution.
type Decision struct {
	Effect           Effect `json:"effect"`
	ApprovalRequired bool   `json:"approvalRequired"`
	// RuleID names the authoritative rule, empty when the system default
	// applied.
	RuleID string `json:"ruleId,omitempty"`
}
