// Package policy implements access-policy resolution for tool invocations.
// The model is decomposed into roles, rules and bindings: a rule defines what
// is matched and decided, a binding defines where and for whom it applies,
// and a role groups rules under one named, bindable unit.  Evaluation is a
// pure function over a consistent Snapshot of the graph - no I/O, no mutable
// state, always producing a decision.
package policy
