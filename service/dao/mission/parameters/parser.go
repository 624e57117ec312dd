// Package parameters parses the annotated parameter form used by mission
// init/export sections: name[data type](kind/location). Both the type and
// the binding are optional in the source document; Parse requires the full
// form and callers fall back to a plain parameter otherwise.
package parameters

import (
	bstate "github.com/viant/bindly/state"
	"github.com/viant/parsly"

	"github.com/gatekit/gatekit/model/state"
)

// Parse decodes name[data type](kind/location) into a parameter with a
// binding location. The (kind/location) suffix may be empty or kind-only.
func Parse(input []byte) (*state.Parameter, error) {
	cursor := parsly.NewCursor("", input, 0)
	parameter := &state.Parameter{Location: &bstate.Location{}}

	matched := cursor.MatchOne(identifierToken)
	if matched.Code != identifierToken.Code {
		return nil, cursor.NewError(identifierToken)
	}
	parameter.Name = matched.Text(cursor)

	if matched = cursor.MatchOne(openSquareBracketToken); matched.Code != openSquareBracketToken.Code {
		return nil, cursor.NewError(openSquareBracketToken)
	}
	if matched = cursor.MatchOne(dataTypeToken); matched.Code != dataTypeToken.Code {
		return nil, cursor.NewError(dataTypeToken)
	}
	parameter.DataType = matched.Text(cursor)
	if matched = cursor.MatchOne(closeSquareBracketToken); matched.Code != closeSquareBracketToken.Code {
		return nil, cursor.NewError(closeSquareBracketToken)
	}

	if matched = cursor.MatchAfterOptional(whitespaceToken, openParenToken); matched.Code != openParenToken.Code {
		return nil, cursor.NewError(openParenToken)
	}
	matched = cursor.MatchAny(kindToken, closeParenToken)
	switch matched.Code {
	case closeParenToken.Code:
		return parameter, nil
	case kindToken.Code:
	default:
		return nil, cursor.NewError(kindToken)
	}
	parameter.Location.Kind = matched.Text(cursor)

	if matched = cursor.MatchOne(slashToken); matched.Code != slashToken.Code {
		if matched = cursor.MatchOne(closeParenToken); matched.Code != closeParenToken.Code {
			return nil, cursor.NewError(closeParenToken)
		}
		return parameter, nil
	}
	if matched = cursor.MatchOne(locationToken); matched.Code == locationToken.Code {
		parameter.Location.In = matched.Text(cursor)
	}
	if matched = cursor.MatchOne(closeParenToken); matched.Code != closeParenToken.Code {
		return nil, cursor.NewError(closeParenToken)
	}
	return parameter, nil
}
