// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import "context"

// Transport delivers a single message to the broker. The transport owns its
// own connection lifecycle, authentication, and low-level retry concerns; the
// dispatching core only requires that Transmit not return until the broker
// has accepted or rejected the message, so that per-group ordering holds.
//
// Implementations must be safe for concurrent use: the dispatcher calls
// Transmit from up to Concurrency worker goroutines at once (always for
// distinct ordering shards).
type Transport interface {
	// Transmit sends one message and blocks until the broker acknowledges it
	// or the attempt fails. The context is cancelled if the producer is
	// force-stopped while the transmit is in flight.
	Transmit(ctx context.Context, msg *Message) (*SendReceipt, error)

	// Close releases the transport's resources. Called once by the producer
	// during Stop, after all in-flight transmits have completed, when the
	// producer created the transport itself.
	Close()
}
