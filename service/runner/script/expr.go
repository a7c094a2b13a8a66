package script

import (
	"fmt"
	"strings"

	"github.com/viant/parsly"
)

// segment is one parsed piece of an interpolated string: either literal text
// or a ${...} reference.
type segment struct {
	text string
	ref  string
}

// parseSegments splits a string into literal and reference segments.
func parseSegments(input string) ([]segment, error) {
	cursor := parsly.NewCursor("", []byte(input), 0)
	var segments []segment
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchOne(openExprToken)
		if matched.Code == openExprToken.Code {
			matched = cursor.MatchOne(selectorToken)
			if matched.Code != selectorToken.Code {
				return nil, cursor.NewError(selectorToken)
			}
			ref := matched.Text(cursor)
			matched = cursor.MatchOne(closeBraceToken)
			if matched.Code != closeBraceToken.Code {
				return nil, cursor.NewError(closeBraceToken)
			}
			segments = append(segments, segment{ref: ref})
			continue
		}
		matched = cursor.MatchOne(textToken)
		if matched.Code != textToken.Code || len(matched.Text(cursor)) == 0 {
			return nil, fmt.Errorf("unable to tokenize %q at %v", input, cursor.Pos)
		}
		segments = append(segments, segment{text: matched.Text(cursor)})
	}
	return segments, nil
}

// Expand resolves ${ref} references against the step state. A string that is
// one bare reference yields the referenced value with its type preserved;
// references embedded in text are interpolated into the string.
func Expand(input string, state map[string]interface{}) (interface{}, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}
	segments, err := parseSegments(input)
	if err != nil {
		return nil, err
	}
	if len(segments) == 1 && segments[0].ref != "" {
		return lookup(segments[0].ref, state)
	}
	builder := strings.Builder{}
	for _, seg := range segments {
		if seg.ref == "" {
			builder.WriteString(seg.text)
			continue
		}
		value, err := lookup(seg.ref, state)
		if err != nil {
			return nil, err
		}
		builder.WriteString(fmt.Sprintf("%v", value))
	}
	return builder.String(), nil
}

// lookup walks a dotted reference through nested maps.
func lookup(ref string, state map[string]interface{}) (interface{}, error) {
	segments := strings.Split(ref, ".")
	var current interface{} = state
	for i, name := range segments {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("reference %q: %q is not addressable", ref, strings.Join(segments[:i], "."))
		}
		current, ok = asMap[name]
		if !ok {
			return nil, fmt.Errorf("reference %q: %q not found", ref, name)
		}
	}
	return current, nil
}

// expandValue walks nested step arguments, expanding every string in place.
func expandValue(value interface{}, state map[string]interface{}) (interface{}, error) {
	switch actual := value.(type) {
	case string:
		return Expand(actual, state)
	case map[string]interface{}:
		expanded := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			item, err := expandValue(v, state)
			if err != nil {
				return nil, err
			}
			expanded[k] = item
		}
		return expanded, nil
	case []interface{}:
		expanded := make([]interface{}, len(actual))
		for i, v := range actual {
			item, err := expandValue(v, state)
			if err != nil {
				return nil, err
			}
			expanded[i] = item
		}
		return expanded, nil
	}
	return value, nil
}
