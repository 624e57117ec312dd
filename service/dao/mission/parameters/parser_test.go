package parameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectName   string
		expectType   string
		expectKind   string
		expectIn     string
		expectError  bool
	}{
		{
			name:       "full form",
			input:      "timeout[int](run/vars)",
			expectName: "timeout",
			expectType: "int",
			expectKind: "run",
			expectIn:   "vars",
		},
		{
			name:       "kind only",
			input:      "ticket[string](env)",
			expectName: "ticket",
			expectType: "string",
			expectKind: "env",
		},
		{
			name:       "empty binding",
			input:      "flag[bool]()",
			expectName: "flag",
			expectType: "bool",
		},
		{
			name:       "generic type",
			input:      "limits[map[string]int](run/vars)",
			expectName: "limits",
			expectType: "map[string]int",
			expectKind: "run",
			expectIn:   "vars",
		},
		{
			name:        "missing type",
			input:       "timeout(run/vars)",
			expectError: true,
		},
		{
			name:        "missing binding",
			input:       "timeout[int]",
			expectError: true,
		},
		{
			name:        "invalid name",
			input:       "9lives[int](run/vars)",
			expectError: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parameter, err := Parse([]byte(tc.input))
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expectName, parameter.Name)
			assert.Equal(t, tc.expectType, parameter.DataType)
			assert.Equal(t, tc.expectKind, parameter.Location.Kind)
			assert.Equal(t, tc.expectIn, parameter.Location.In)
		})
	}
}
