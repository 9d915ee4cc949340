// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

// Package fifoq provides an ordered-delivery message producer: a
// concurrency-bounded dispatching core that serializes sends per ordering
// group while transmitting distinct groups in parallel.
//
// # Overview
//
// Callers submit messages carrying an ordering Group. The producer hashes the
// group onto a fixed set of shards, queues the message on its shard in
// arrival order, and a bounded worker pool transmits shard heads through a
// pluggable Transport. Two messages sharing a group are never in flight at
// the same time and always transmit in submission order; messages with
// different groups may overlap, up to the configured concurrency.
//
// # Quick Start
//
// Create a Producer by setting fields directly:
//
//	producer := &fifoq.Producer{
//	    Brokers:     []string{"localhost:9092"},
//	    Topics:      []string{"fifo-topic"},
//	    Concurrency: 10,
//	}
//
//	if err := producer.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer producer.Stop(context.Background())
//
//	msg := &fifoq.Message{
//	    Topic: "fifo-topic",
//	    Tag:   "TagA",
//	    Group: "message-group-0",
//	    Body:  []byte(`{"status":"online"}`),
//	}
//
//	receipt, err := producer.Send(context.Background(), msg)
//	if err != nil {
//	    log.Printf("send failed: %v", err)
//	}
//
// # Synchronous and Asynchronous Sends
//
//   - Send blocks the caller until the shard's worker completes the transmit
//     and returns the broker receipt or an error.
//
//   - SendAsync returns immediately; the completion callback is invoked
//     exactly once, from a worker goroutine, with either a receipt or an
//     error.
//
// Transmit failures complete the individual send with an error and do not
// block later messages on the same group; resubmission is the caller's
// decision.
//
// # Backpressure
//
// Per-shard queues are unbounded by default. Setting QueueDepth bounds them;
// BlockWhenFull then selects between blocking the sender until space frees
// (honoring context cancellation) and failing fast with ErrQueueFull. The
// policy is explicit configuration, never inferred.
//
// # Shutdown
//
// Stop refuses new sends with ErrClosed and drains queued and in-flight
// sends, bounded by the caller's context deadline or CleanupTimeout. Sends
// still pending when the deadline expires are failed with ErrShutdown;
// nothing is silently dropped.
//
// # Transports
//
// The default transport produces synchronously to Kafka via franz-go, with
// the ordering group as the record key. Any implementation of the Transport
// interface can be substituted through the Transport field, including
// BreakerTransport, which adds a circuit breaker around another transport.
//
// # Observability
//
// The library is framework-agnostic: register SendEvent listeners to feed
// whatever metrics system the application uses:
//
//	producer.InitialSendEventListeners = []func(*fifoq.SendEvent){
//	    func(e *fifoq.SendEvent) {
//	        if e.Error != nil {
//	            metrics.ErrorCounter.WithLabelValues(e.Topic, e.ErrorType).Inc()
//	        }
//	        metrics.LatencyHistogram.WithLabelValues(e.Topic).Observe(e.Duration.Seconds())
//	    },
//	}
//
// # Thread Safety
//
// The Producer type is safe for concurrent use by multiple goroutines. All
// methods (Start, Stop, Send, SendAsync, Pending) can be called concurrently
// without external synchronization.
package fifoq
