// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import "errors"

var (
	// ErrValidation indicates configuration or message validation failed.
	ErrValidation = &metricError{
		metric:  "validation_error",
		message: "validation error",
	}

	// ErrClosed indicates a send was attempted after the producer was stopped.
	ErrClosed = &metricError{
		metric:  "producer_closed",
		message: "producer closed",
	}

	// ErrQueueFull indicates a shard queue is at capacity (fail-fast policy only).
	ErrQueueFull = &metricError{
		metric:  "queue_full",
		message: "queue full",
	}

	// ErrTransport indicates the underlying transport rejected the message.
	ErrTransport = &metricError{
		metric:  "transport_error",
		message: "transport error",
	}

	// ErrShutdown indicates a pending send was aborted because the drain
	// timeout expired during Stop.
	ErrShutdown = &metricError{
		metric:  "shutdown",
		message: "send aborted during shutdown",
	}

	// ErrUnknownTopic indicates the message topic is not in the producer's
	// configured topic list.
	ErrUnknownTopic = &metricError{
		metric:  "unknown_topic",
		message: "topic not configured",
	}

	// ErrNotStarted indicates the producer has not been started.
	ErrNotStarted = &metricError{
		metric:  "not_started",
		message: "producer not started",
	}

	// ErrAlreadyStarted indicates the producer has already been started.
	ErrAlreadyStarted = &metricError{
		metric:  "already_started",
		message: "producer already started",
	}
)

// metricError is an internal error type that wraps errors with a type classification
// for metrics and observability. The metric field provides a string label for grouping
// errors in metrics systems.
type metricError struct {
	metric  string // Type classification for metrics (e.g., "queue_full", "validation_error")
	message string // Human-readable message
}

// Error implements the error interface.
func (e *metricError) Error() string {
	return e.message
}

func (e *metricError) Metric() string {
	return e.metric
}

func (e *metricError) Is(target error) bool {
	if t, ok := target.(*metricError); ok {
		return e.message == t.message
	}
	return false
}

// errorType extracts the error type string for metrics classification.
// Walks the error chain to find metricError types.
func errorType(err error) string {
	if err == nil {
		return ""
	}

	// Walk the error chain to find a metricError
	var me *metricError
	if errors.As(err, &me) {
		return me.Metric()
	}

	return "unknown"
}
