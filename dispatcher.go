// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"
)

// dispatcher owns the shard array and a fixed pool of workers, and matches
// idle workers to shards that have pending work and are not in flight.
//
// The ready channel is the ready set: a shard index appears in it at most
// once, admitted on the idle-to-ready transition (by an enqueuer) or the
// in-flight-to-ready transition (by the worker that just completed the
// shard). With capacity equal to the shard count, sends into it never block.
// Workers pulling from the shared channel round-robin across ready shards,
// so low-traffic groups are not starved by busy ones.
type dispatcher struct {
	transport Transport
	shards    []*sendShard
	ready     chan int
	logger    kgo.Logger

	// notify receives one SendEvent per completion. May be nil.
	notify func(*SendEvent)

	// baseCtx is the context workers transmit under; cancelled to abort
	// in-flight transmits when the drain timeout expires.
	baseCtx context.Context
	cancel  context.CancelFunc

	eg errgroup.Group

	// mu serializes the closed flag against pending.Add so that no send can
	// slip past a Stop that has already begun waiting on pending, and the
	// readyClosed flag against ready-channel admissions so that a late
	// admission cannot hit a closed channel.
	mu          sync.RWMutex
	isClosed    bool
	readyClosed bool
	closed      chan struct{}

	pending sync.WaitGroup
	gauge   atomic.Int64
}

// newDispatcher builds the shard array and starts the worker pool. The
// worker count bounds how many ordering shards may have transmits in flight
// simultaneously; shardCount may exceed it, in which case ready shards wait
// for a free worker.
func newDispatcher(transport Transport, shardCount, workers, queueDepth int, blockWhenFull bool, logger kgo.Logger, notify func(*SendEvent)) *dispatcher {
	d := &dispatcher{
		transport: transport,
		shards:    make([]*sendShard, shardCount),
		ready:     make(chan int, shardCount),
		logger:    logger,
		notify:    notify,
		closed:    make(chan struct{}),
	}
	d.baseCtx, d.cancel = context.WithCancel(context.Background())

	for i := range d.shards {
		d.shards[i] = newSendShard(queueDepth, blockWhenFull)
	}
	for i := 0; i < workers; i++ {
		d.eg.Go(d.run)
	}
	return d
}

// enqueue routes the message to its shard and queues it. The completion
// callback is invoked exactly once, later, from a worker goroutine (or from
// the Stop path if the send is aborted during shutdown).
func (d *dispatcher) enqueue(ctx context.Context, msg *Message, done func(*SendReceipt, error)) error {
	d.mu.RLock()
	if d.isClosed {
		d.mu.RUnlock()
		return ErrClosed
	}
	d.pending.Add(1)
	d.mu.RUnlock()

	idx := shardIndex(msg.Group, len(d.shards))
	ps := &pendingSend{
		msg:      msg,
		done:     done,
		enqueued: time.Now(),
	}

	d.gauge.Add(1)
	admit, err := d.shards[idx].enqueue(ctx, ps, d.closed)
	if err != nil {
		d.gauge.Add(-1)
		d.pending.Done()
		return err
	}

	if admit {
		// A forced Stop can abort this send from the shard queue before the
		// admission below runs, letting pending hit zero and the ready
		// channel close; the readyClosed check keeps the late admission off
		// the closed channel. The send itself was already completed by the
		// abort in that case.
		d.mu.RLock()
		if !d.readyClosed {
			d.ready <- idx
		}
		d.mu.RUnlock()
	}
	return nil
}

// run is one worker. It pulls a ready shard, transmits its head message, and
// re-admits the shard if more work remains. Exits when the ready channel is
// closed and drained.
func (d *dispatcher) run() error {
	for idx := range d.ready {
		sh := d.shards[idx]

		ps := sh.drainOne()
		if ps == nil {
			// Stale entry from a shutdown abort.
			continue
		}

		receipt, err := d.transport.Transmit(d.baseCtx, ps.msg)
		if err != nil {
			if d.baseCtx.Err() != nil {
				err = errors.Join(ErrShutdown, err)
			} else if !errors.Is(err, ErrTransport) {
				err = errors.Join(ErrTransport, err)
			}
		}

		// Re-admit before delivering completion so the shard's next message
		// can be picked up by another worker without waiting on the callback.
		// No readyClosed guard is needed here: re-admission implies queued
		// items that are still pending, so the channel cannot be closed yet.
		if sh.complete() {
			d.ready <- idx
		}

		d.finish(idx, ps, receipt, err)
	}
	return nil
}

// finish delivers the completion and its observer event. Each pendingSend
// reaches finish exactly once.
func (d *dispatcher) finish(shard int, ps *pendingSend, receipt *SendReceipt, err error) {
	ps.done(receipt, err)

	if d.notify != nil {
		d.notify(&SendEvent{
			Group:     ps.msg.Group,
			Topic:     ps.msg.Topic,
			Shard:     shard,
			Error:     err,
			ErrorType: errorType(err),
			Duration:  time.Since(ps.enqueued),
		})
	}

	d.gauge.Add(-1)
	d.pending.Done()
}

// stop refuses new enqueues and waits for queued and in-flight sends to
// reach a terminal state. If ctx expires first, still-queued sends are failed
// with ErrShutdown and in-flight transmits are cancelled; nothing is silently
// dropped. Idempotent.
func (d *dispatcher) stop(ctx context.Context) error {
	d.mu.Lock()
	if d.isClosed {
		d.mu.Unlock()
		return nil
	}
	d.isClosed = true
	close(d.closed)
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(drained)
	}()

	var drainErr error
	select {
	case <-drained:
	case <-ctx.Done():
		drainErr = ctx.Err()
		d.logger.Log(kgo.LogLevelWarn, "drain timeout expired, aborting pending sends")

		// Cancel in-flight transmits, then fail everything still queued.
		d.cancel()
		for i, sh := range d.shards {
			for _, ps := range sh.abort() {
				d.finish(i, ps, nil, ErrShutdown)
			}
		}
		<-drained
	}

	// Pending is zero and the closed flag is set, so the only admission that
	// can still arrive is an enqueuer preempted between its shard append and
	// its ready send whose message the abort already completed; setting
	// readyClosed under the lock makes that straggler skip the send before
	// the channel closes, releasing the workers safely.
	d.mu.Lock()
	d.readyClosed = true
	close(d.ready)
	d.mu.Unlock()
	d.cancel()
	return errors.Join(drainErr, d.eg.Wait())
}

// pendingCount returns the number of accepted sends that have not completed:
// queued, in flight, or still blocked on a backpressure slot. Incremented
// before the send becomes visible in its shard queue so the abort path can
// never drive the gauge negative.
func (d *dispatcher) pendingCount() int64 {
	return d.gauge.Load()
}
