package meta

import (
	"os"
	"strings"
	"unicode"
)

// expandEnvExpr replaces each ${env.KEY} occurrence with the value of the
// environment variable KEY (empty when unset). Malformed expressions are kept
// as literals.
func expandEnvExpr(value string) string {
	const prefix = "${env."
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)
		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		key := value[startKey : startKey+endKey]
		valid := true
		for _, r := range key {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
				valid = false
				break
			}
		}
		if !valid {
			// Keep the prefix as literal and rescan what follows it.
			b.WriteString(value[i+idx : startKey])
			i = startKey
			continue
		}
		b.WriteString(os.Getenv(key))
		i = startKey + endKey + 1
	}
	return b.String()
}
