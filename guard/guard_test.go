package guard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_IsAllowed(t *testing.T) {
	testCases := []struct {
		name       string
		guard      *Guard
		actionType string
		expected   bool
	}{
		{
			name:       "nil guard allows",
			guard:      nil,
			actionType: "deploy",
			expected:   true,
		},
		{
			name:       "empty allow list admits everything",
			guard:      &Guard{},
			actionType: "deploy",
			expected:   true,
		},
		{
			name:       "block list wins",
			guard:      &Guard{AllowList: []string{"deploy"}, BlockList: []string{"deploy"}},
			actionType: "deploy",
			expected:   false,
		},
		{
			name:       "allow list filters",
			guard:      &Guard{AllowList: []string{"deploy"}},
			actionType: "rollback",
			expected:   false,
		},
		{
			name:       "match is case insensitive",
			guard:      &Guard{AllowList: []string{"Deploy"}},
			actionType: "deploy",
			expected:   true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.guard.IsAllowed(tc.actionType))
		})
	}
}

func TestGuard_Admits(t *testing.T) {
	ctx := context.Background()

	var nilGuard *Guard
	assert.True(t, nilGuard.Admits(ctx, "deploy"))
	assert.True(t, (&Guard{Mode: ModeAuto}).Admits(ctx, "deploy"))
	assert.False(t, (&Guard{Mode: ModeDeny}).Admits(ctx, "deploy"))

	// Hold without a callback refuses.
	assert.False(t, (&Guard{Mode: ModeHold}).Admits(ctx, "deploy"))

	held := &Guard{Mode: ModeHold, Hold: func(_ context.Context, actionType string, _ *Guard) bool {
		return actionType == "deploy"
	}}
	assert.True(t, held.Admits(ctx, "deploy"))
	assert.False(t, held.Admits(ctx, "rollback"))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	g := &Guard{Mode: ModeDeny}
	ctx := WithGuard(context.Background(), g)
	assert.Same(t, g, FromContext(ctx))
}

func TestConfigConversion(t *testing.T) {
	assert.Nil(t, FromConfig(nil))
	assert.Nil(t, ToConfig(nil))
	g := FromConfig(&Config{Mode: ModeHold, AllowList: []string{"a"}, BlockList: []string{"b"}})
	assert.Equal(t, ModeHold, g.Mode)
	back := ToConfig(g)
	assert.Equal(t, []string{"a"}, back.AllowList)
	assert.Equal(t, []string{"b"}, back.BlockList)
}
