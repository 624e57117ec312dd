package parameters

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceCode = iota
	identifierCode
	openSquareBracketCode
	closeSquareBracketCode
	openParenCode
	closeParenCode
	slashCode
	dataTypeCode
	kindCode
	locationCode
)

var (
	whitespaceToken         = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	identifierToken         = parsly.NewToken(identifierCode, "Identifier", &identifierMatcher{})
	openSquareBracketToken  = parsly.NewToken(openSquareBracketCode, "[", matcher.NewByte('['))
	closeSquareBracketToken = parsly.NewToken(closeSquareBracketCode, "]", matcher.NewByte(']'))
	openParenToken          = parsly.NewToken(openParenCode, "(", matcher.NewByte('('))
	closeParenToken         = parsly.NewToken(closeParenCode, ")", matcher.NewByte(')'))
	slashToken              = parsly.NewToken(slashCode, "/", matcher.NewByte('/'))
	dataTypeToken           = parsly.NewToken(dataTypeCode, "DataType", &dataTypeMatcher{})
	kindToken               = parsly.NewToken(kindCode, "Kind", &untilMatcher{stops: "/)"})
	locationToken           = parsly.NewToken(locationCode, "Location", &untilMatcher{stops: ")"})
)

// identifierMatcher matches a parameter name: a letter or underscore followed
// by letters, digits or underscores.
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < cursor.InputSize; i++ {
		if !isLetter(input[i]) && !isDigit(input[i]) && input[i] != '_' {
			break
		}
		matched++
	}
	return matched
}

// dataTypeMatcher consumes a type expression up to the closing square
// bracket, tracking nested brackets so generic types survive.
type dataTypeMatcher struct{}

func (m *dataTypeMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched, depth := 0, 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		switch input[i] {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return matched
			}
			depth--
		}
		matched++
	}
	return matched
}

// untilMatcher consumes everything up to (excluding) any stop byte.
type untilMatcher struct {
	stops string
}

func (m *untilMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		for j := 0; j < len(m.stops); j++ {
			if input[i] == m.stops[j] {
				return matched
			}
		}
		matched++
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
