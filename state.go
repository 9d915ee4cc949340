// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

// shardState tracks where a shard sits in its dispatch cycle.
type shardState int

const (
	// shardIdle indicates the shard has no pending work.
	shardIdle shardState = iota

	// shardReady indicates the shard has pending work and is waiting for a
	// worker. A ready shard is admitted to the dispatcher's ready channel
	// exactly once.
	shardReady

	// shardInFlight indicates a worker is currently transmitting the shard's
	// head message. At most one message per shard is ever in flight.
	shardInFlight
)

// String returns the string representation of the shardState.
func (s shardState) String() string {
	switch s {
	case shardIdle:
		return "idle"
	case shardReady:
		return "ready"
	case shardInFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}
