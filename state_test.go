// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestShardState_String tests the String() method for all shardState values.
func TestShardState_String(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		state    shardState
		expected string
	}{
		{
			name:     "idle",
			state:    shardIdle,
			expected: "idle",
		},
		{
			name:     "ready",
			state:    shardReady,
			expected: "ready",
		},
		{
			name:     "in flight",
			state:    shardInFlight,
			expected: "in_flight",
		},
		{
			name:     "unknown - invalid state value",
			state:    shardState(999),
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt := tt
			t.Parallel()
			result := tt.state.String()
			assert.Equal(t, tt.expected, result, "String() should return correct value")
		})
	}
}
