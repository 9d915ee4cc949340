// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestShardIndex tests the shardIndex function's edge cases and bounds checking.
// Note: We trust the standard library's hash/fnv implementation for consistency and distribution.
func TestShardIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		group string
		n     int
		want  int
	}{
		{"n=0 returns 0", "any-group", 0, 0},
		{"negative n returns 0", "any-group", -5, 0},
		{"n=1 always returns 0", "any-group", 1, 0},
		{"empty group maps to the default shard", "", 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt := tt
			t.Parallel()

			got := shardIndex(tt.group, tt.n)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		for _, group := range []string{"message-group-0", "message-group-9", "a"} {
			first := shardIndex(group, 10)
			for iter := 0; iter < 100; iter++ {
				assert.Equal(t, first, shardIndex(group, 10))
			}
		}
	})

	// Test that result is within bounds for normal cases
	t.Run("result within bounds", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			group string
			n     int
		}{
			{"message-group-3", 3},
			{"order-lane", 10},
			{"x", 5},
		}

		for _, tc := range testCases {
			result := shardIndex(tc.group, tc.n)
			assert.GreaterOrEqual(t, result, 0)
			assert.Less(t, result, tc.n)
		}
	})
}
