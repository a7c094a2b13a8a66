package policy

import "strings"

// MatchPath reports whether pattern matches the dot-delimited tool path using
// the supplied semantics. Exact matching requires byte equality; glob
// matching supports '*' (any run of characters within one segment) and '?'
// (one character within a segment). Wildcards never cross a '.' boundary, so
// "admin.*" matches "admin.delete_data" but not "admins.delete_data" or
// "admin.users.list".
func MatchPath(pattern, path string, matchType MatchType) bool {
	if matchType == MatchExact {
		return pattern == path
	}
	patternSegments := strings.Split(pattern, ".")
	pathSegments := strings.Split(path, ".")
	if len(patternSegments) != len(pathSegments) {
		return false
	}
	for i, segment := range patternSegments {
		if !matchSegment(segment, pathSegments[i]) {
			return false
		}
	}
	return true
}

// matchSegment matches one dot-delimited segment with '*' and '?' wildcards.
func matchSegment(pattern, segment string) bool {
	// iterative backtracking over the last '*' position
	var pIdx, sIdx int
	starIdx, starMatch := -1, 0
	for sIdx < len(segment) {
		switch {
		case pIdx < len(pattern) && (pattern[pIdx] == '?' || pattern[pIdx] == segment[sIdx]):
			pIdx++
			sIdx++
		case pIdx < len(pattern) && pattern[pIdx] == '*':
			starIdx = pIdx
			starMatch = sIdx
			pIdx++
		case starIdx != -1:
			pIdx = starIdx + 1
			starMatch++
			sIdx = starMatch
		default:
			return false
		}
	}
	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}

// matchesSelector reports whether the rule selector matches the call.
func matchesSelector(rule *Rule, call *CallContext) bool {
	switch rule.Selector {
	case SelectAll:
		return true
	case SelectSourceKey:
		return rule.SourceKey != "" && rule.SourceKey == call.SourceKey
	case SelectNamespace:
		namespace := call.ToolPath
		if idx := strings.Index(namespace, "."); idx != -1 {
			namespace = namespace[:idx]
		}
		return MatchPath(rule.Namespace, namespace, rule.MatchType)
	case SelectToolPath:
		return MatchPath(rule.ToolPath, call.ToolPath, rule.MatchType)
	}
	return false
}
