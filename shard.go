// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"context"
	"sync"
	"time"
)

// pendingSend is a queued message plus its completion sink. Created at
// enqueue, delivered exactly once: either by the worker that transmits it or
// by the shutdown path that aborts it, never both (both pop under the shard
// mutex).
type pendingSend struct {
	msg      *Message
	done     func(*SendReceipt, error)
	enqueued time.Time
}

// sendShard holds the pending sends of one ordering shard in strict arrival
// order and guarantees at most one transmit in flight for the shard.
//
// The queue and state are mutated only by (a) enqueuing callers appending at
// the tail and (b) the single worker currently servicing the shard popping at
// the head. The shard mutex covers both; no other synchronization is needed.
type sendShard struct {
	mu    sync.Mutex
	queue []*pendingSend
	state shardState

	// slots bounds the queue depth when non-nil. A token is acquired before
	// appending and released when the item leaves the queue (drained or
	// aborted). block selects between waiting for a slot and failing fast.
	slots chan struct{}
	block bool
}

func newSendShard(depth int, block bool) *sendShard {
	s := &sendShard{block: block}
	if depth > 0 {
		s.slots = make(chan struct{}, depth)
	}
	return s
}

// enqueue appends ps at the tail. It reports whether the shard transitioned
// from idle to ready, in which case the caller must admit the shard to the
// dispatcher's ready channel.
//
// With a bounded queue and BlockWhenFull, enqueue waits for a free slot until
// ctx is done or the producer closes. With a bounded queue and fail-fast
// policy it returns ErrQueueFull immediately when full.
func (s *sendShard) enqueue(ctx context.Context, ps *pendingSend, closed <-chan struct{}) (bool, error) {
	if s.slots != nil {
		select {
		case s.slots <- struct{}{}:
		default:
			if !s.block {
				return false, ErrQueueFull
			}
			select {
			case s.slots <- struct{}{}:
			case <-ctx.Done():
				return false, ctx.Err()
			case <-closed:
				return false, ErrClosed
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, ps)
	if s.state == shardIdle {
		s.state = shardReady
		return true, nil
	}
	return false, nil
}

// drainOne pops the head and marks the shard in flight. Returns nil if the
// shard has no pending work or is already in flight (a stale ready-channel
// entry after an abort).
func (s *sendShard) drainOne() *pendingSend {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == shardInFlight || len(s.queue) == 0 {
		return nil
	}
	ps := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	s.state = shardInFlight
	if s.slots != nil {
		<-s.slots
	}
	return ps
}

// complete clears the in-flight mark after a transmit finishes. It reports
// whether more work is pending, in which case the worker must re-admit the
// shard to the ready channel.
func (s *sendShard) complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) > 0 {
		s.state = shardReady
		return true
	}
	s.state = shardIdle
	return false
}

// abort empties the queue and returns the removed sends so the caller can
// fail them. An in-flight transmit is left alone; its completion finds the
// queue empty and parks the shard idle.
func (s *sendShard) abort() []*pendingSend {
	s.mu.Lock()
	defer s.mu.Unlock()
	aborted := s.queue
	s.queue = nil
	if s.slots != nil {
		for range aborted {
			<-s.slots
		}
	}
	if s.state == shardReady {
		s.state = shardIdle
	}
	return aborted
}
