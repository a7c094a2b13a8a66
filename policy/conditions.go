package policy

import (
	"fmt"
	"strings"
)

// matchesConditions reports whether every rule condition holds against the
// call arguments. Each operator is evaluated against the named argument's
// string representation; an absent argument fails equals/contains/starts_with
// and passes not_equals.
func matchesConditions(conditions []Condition, arguments map[string]interface{}) bool {
	for i := range conditions {
		if !matchesCondition(&conditions[i], arguments) {
			return false
		}
	}
	return true
}

func matchesCondition(condition *Condition, arguments map[string]interface{}) bool {
	raw, present := arguments[condition.Key]
	if !present {
		return condition.Operator == OpNotEquals
	}
	actual := stringify(raw)
	switch condition.Operator {
	case OpEquals:
		return actual == condition.Value
	case OpNotEquals:
		return actual != condition.Value
	case OpContains:
		return strings.Contains(actual, condition.Value)
	case OpStartsWith:
		return strings.HasPrefix(actual, condition.Value)
	}
	return false
}

func stringify(value interface{}) string {
	if value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprintf("%v", value)
}
