// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"hash/fnv"
)

// shardIndex maps an ordering group to a stable shard in [0, n).
// Pure function of group and n: the same group always lands on the same shard
// for the lifetime of a dispatcher. An empty group maps to shard 0, the
// default ordering lane. Returns 0 if n <= 0.
//
// Distinct groups may collide on a shard; ordering is only guaranteed within
// a group, never across groups sharing a shard.
func shardIndex(group string, n int) int {
	if n <= 0 || group == "" {
		return 0
	}

	h := fnv.New32a()
	h.Write([]byte(group))
	hash := h.Sum32()

	//nolint:gosec // G115: Modulo ensures result fits in int range
	return int(hash % uint32(n))
}
