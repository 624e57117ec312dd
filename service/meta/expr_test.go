package meta

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvExpr(t *testing.T) {
	_ = os.Setenv("GATEKIT_TEST_TOKEN", "secret")
	_ = os.Unsetenv("GATEKIT_TEST_MISSING")

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no expression",
			input:    "plain value",
			expected: "plain value",
		},
		{
			name:     "single expression",
			input:    "token: ${env.GATEKIT_TEST_TOKEN}",
			expected: "token: secret",
		},
		{
			name:     "unset variable expands to empty",
			input:    "${env.GATEKIT_TEST_MISSING}!",
			expected: "!",
		},
		{
			name:     "missing closing brace stays literal",
			input:    "${env.GATEKIT_TEST_TOKEN",
			expected: "${env.GATEKIT_TEST_TOKEN",
		},
		{
			name:     "invalid key stays literal",
			input:    "${env.NOT-A-KEY}",
			expected: "${env.NOT-A-KEY}",
		},
		{
			name:     "multiple expressions",
			input:    "${env.GATEKIT_TEST_TOKEN}/${env.GATEKIT_TEST_TOKEN}",
			expected: "secret/secret",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, expandEnvExpr(tc.input))
		})
	}
}
