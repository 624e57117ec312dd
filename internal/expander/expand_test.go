package expander

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	vars := map[string]interface{}{
		"service": "checkout",
		"version": "1.4.2",
		"retries": 3,
		"deploy": map[string]interface{}{
			"region": "us-east-1",
		},
	}

	testCases := []struct {
		name     string
		input    interface{}
		expected interface{}
	}{
		{
			name:     "plain string",
			input:    "no references",
			expected: "no references",
		},
		{
			name:     "pure reference keeps type",
			input:    "$retries",
			expected: 3,
		},
		{
			name:     "pure braced reference",
			input:    "${service}",
			expected: "checkout",
		},
		{
			name:     "dotted path",
			input:    "${deploy.region}",
			expected: "us-east-1",
		},
		{
			name:     "interpolation",
			input:    "deploy $service v${version}",
			expected: "deploy checkout v1.4.2",
		},
		{
			name:     "unknown pure reference becomes empty",
			input:    "$missing",
			expected: "",
		},
		{
			name: "nested structures",
			input: map[string]interface{}{
				"message": "releasing $service",
				"labels":  []interface{}{"$version", "static"},
			},
			expected: map[string]interface{}{
				"message": "releasing checkout",
				"labels":  []interface{}{"1.4.2", "static"},
			},
		},
		{
			name:     "non string passes through",
			input:    42,
			expected: 42,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Expand(tc.input, vars))
		})
	}
}
