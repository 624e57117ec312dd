// Package expander substitutes $var and ${var} references in declarative
// action inputs with values from the run variables. A string that is exactly
// one reference keeps the referenced value's type; mixed strings
// interpolate.
package expander

import (
	"fmt"
	"regexp"
	"strings"
)

var referenceExpr = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_.]*)\}|\$([a-zA-Z_][a-zA-Z0-9_.]*)`)

// Expand walks the value and substitutes variable references in every string
// it contains. Maps and slices are copied, other values pass through.
func Expand(value interface{}, vars map[string]interface{}) interface{} {
	switch actual := value.(type) {
	case string:
		return expandString(actual, vars)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			out[k] = Expand(v, vars)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(actual))
		for i, v := range actual {
			out[i] = Expand(v, vars)
		}
		return out
	}
	return value
}

func expandString(value string, vars map[string]interface{}) interface{} {
	matches := referenceExpr.FindAllStringIndex(value, -1)
	if len(matches) == 0 {
		return value
	}
	// A single reference spanning the whole string keeps its type.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(value) {
		if resolved, ok := lookup(referenceName(value), vars); ok {
			return resolved
		}
		return ""
	}
	return referenceExpr.ReplaceAllStringFunc(value, func(ref string) string {
		resolved, ok := lookup(referenceName(ref), vars)
		if !ok {
			return ""
		}
		return fmt.Sprintf("%v", resolved)
	})
}

func referenceName(ref string) string {
	ref = strings.TrimPrefix(ref, "$")
	ref = strings.TrimPrefix(ref, "{")
	return strings.TrimSuffix(ref, "}")
}

// lookup resolves a dotted path against nested maps.
func lookup(path string, vars map[string]interface{}) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = vars
	for _, part := range parts {
		holder, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = holder[part]; !ok {
			return nil, false
		}
	}
	return current, true
}
