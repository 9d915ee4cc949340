// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import "time"

// SendEvent represents an event when a message has been transmitted or failed
// to transmit. One event is dispatched per completion, for both Send and
// SendAsync, including sends aborted during shutdown.
type SendEvent struct {
	// Group is the ordering key of the message (empty for the default lane).
	Group string

	// Topic is the topic the message was sent to (or attempted to send to).
	Topic string

	// Shard is the index of the ordering shard the message was routed to.
	Shard int

	// Error is the error that occurred during transmission (nil on success).
	Error error

	// ErrorType is the error classification (empty for successful sends).
	// Values: "transport_error", "shutdown", "queue_full", etc.
	ErrorType string

	// Duration is the time taken from enqueue to completion.
	Duration time.Duration
}
