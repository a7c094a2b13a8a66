package script

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	textCode = iota
	openExprCode
	selectorCode
	closeBraceCode
)

// Token definitions
var (
	textToken       = parsly.NewToken(textCode, "Text", newTextMatcher())
	openExprToken   = parsly.NewToken(openExprCode, "${", matcher.NewFragment("${"))
	selectorToken   = parsly.NewToken(selectorCode, "Selector", newSelectorMatcher())
	closeBraceToken = parsly.NewToken(closeBraceCode, "}", matcher.NewByte('}'))
)

// textMatcher captures literal text up to the next expression opener.
type textMatcher struct{}

func newTextMatcher() parsly.Matcher {
	return &textMatcher{}
}

func (m *textMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == '$' && i+1 < size && input[i+1] == '{' {
			break
		}
		matched++
	}
	return matched
}

// selectorMatcher matches a dotted reference path such as files.count.
type selectorMatcher struct{}

func newSelectorMatcher() parsly.Matcher {
	return &selectorMatcher{}
}

func (m *selectorMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		c := input[i]
		if isLetter(c) || isDigit(c) || c == '_' || c == '.' {
			matched++
			continue
		}
		break
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
