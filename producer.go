// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/xmidt-org/eventor"
)

// transportFactory is a function that creates a Transport from a Producer's
// configuration. This allows dependency injection for testing.
type transportFactory func(p *Producer) (Transport, error)

// defaultTransportFactory is the production factory that builds a Kafka
// transport from the producer's broker configuration.
func defaultTransportFactory(p *Producer) (Transport, error) {
	t := &KafkaTransport{
		Brokers:                p.Brokers,
		SASL:                   p.SASL,
		TLS:                    p.TLS,
		RequestTimeout:         p.RequestTimeout,
		AllowAutoTopicCreation: p.AllowAutoTopicCreation,
		Logger:                 p.logger,
	}
	if err := t.Start(); err != nil {
		return nil, err
	}
	return t, nil
}

// Producer is the ordered-delivery producer facade.
//
// Messages sharing a non-empty Group are transmitted strictly in submission
// order and never overlap in time; messages with different groups may be
// transmitted concurrently, bounded by Concurrency.
//
// Thread Safety: All methods are safe for concurrent use by multiple
// goroutines. Multiple goroutines may call Start(), Stop(), Send(),
// SendAsync(), and Pending() simultaneously without external synchronization.
type Producer struct {
	// --- STATIC CONFIGURATION (set before Start, immutable after) ---

	// Brokers is the list of broker addresses for the default Kafka
	// transport. Required unless Transport is set. Each address must be in
	// "host:port" format.
	Brokers []string

	// Topics is the allow-list of topics this producer may send to.
	// Required. Must not be empty.
	Topics []string

	// Concurrency is the worker pool size: the maximum number of ordering
	// groups with transmits in flight at any moment. Required. Must be >= 1.
	Concurrency int

	// ShardCount is the number of ordering shards groups are hashed onto.
	// Optional. Defaults to Concurrency. May exceed Concurrency (many
	// groups, few workers); ready shards then wait for a free worker.
	ShardCount int

	// QueueDepth bounds the number of queued (not in-flight) sends per
	// shard. Zero or negative values disable the bound.
	// Default: 0 (unbounded).
	QueueDepth int

	// BlockWhenFull selects the backpressure policy for bounded queues.
	// When true, a send on a full shard blocks until space frees, the
	// context is cancelled, or the producer closes. When false (default),
	// a send on a full shard fails fast with ErrQueueFull.
	// Ignored when QueueDepth is unbounded.
	BlockWhenFull bool

	// SASL configures SASL authentication for the default Kafka transport.
	// Optional. If nil, no authentication is used.
	SASL sasl.Mechanism

	// TLS configures TLS encryption for the default Kafka transport.
	// Optional. If nil, plaintext connections are used.
	TLS *tls.Config

	// RequestTimeout sets the maximum time the default Kafka transport
	// waits for a broker response per transmit. Zero or negative values
	// mean no timeout. Default: 0 (no timeout).
	RequestTimeout time.Duration

	// CleanupTimeout sets the maximum time to wait for queued and in-flight
	// sends to drain on Stop. Zero or negative values mean no timeout.
	// Default: 0 (no timeout).
	CleanupTimeout time.Duration

	// AllowAutoTopicCreation enables automatic topic creation on the default
	// Kafka transport. Default: false.
	AllowAutoTopicCreation bool

	// Transport overrides the default Kafka transport. Optional. When set,
	// Brokers, SASL, TLS, RequestTimeout, and AllowAutoTopicCreation are
	// ignored and the caller retains ownership: Stop does not close it.
	Transport Transport

	// Logger is the logger instance (same interface as franz-go).
	// Optional. If nil, a no-op logger will be used.
	Logger kgo.Logger

	// InitialSendEventListeners are event listeners registered when Start()
	// is called. These listeners receive SendEvent notifications for every
	// completion. For dynamic listener management after Start(), use
	// AddSendEventListener(). Optional.
	InitialSendEventListeners []func(*SendEvent)

	// --- INTERNAL FIELDS (not for user configuration) ---

	// logger is for internal use only.
	// The actively used logger instance (never nil, defaults to nopLogger).
	logger kgo.Logger

	// transportFactory is for internal use only (testing hook).
	// Creates the transport, can be overridden for mocking in tests.
	transportFactory transportFactory

	// mu is for internal use only.
	// Protects the dispatcher and transport fields during Start/Stop.
	mu sync.Mutex

	// disp is for internal use only.
	// The dispatcher instance, initialized in Start() and drained in Stop().
	disp *dispatcher

	// transport is for internal use only.
	// The active transport; closed in Stop() only when ownsTransport.
	transport     Transport
	ownsTransport bool

	// stopped is for internal use only.
	// Distinguishes a stopped producer from a never-started one so sends
	// after Stop fail with ErrClosed rather than ErrNotStarted.
	stopped bool

	// topics is for internal use only.
	// Fast lookup for the Topics allow-list.
	topics map[string]struct{}

	// sendEventListeners is for internal use only.
	// Event broadcaster for SendEvent notifications.
	sendEventListeners eventor.Eventor[func(*SendEvent)]

	// registerInitialListenersOnce is for internal use only.
	// Ensures InitialSendEventListeners are registered exactly once.
	registerInitialListenersOnce sync.Once
}

// AddSendEventListener adds a listener for when a message has been either
// transmitted or failed to transmit.
//
// Listeners are called from worker goroutines and must be thread-safe. The
// returned function removes the listener.
func (p *Producer) AddSendEventListener(fn func(*SendEvent)) func() {
	return p.sendEventListeners.Add(fn)
}

// Start validates the configuration, connects the transport, and starts the
// worker pool. Must be called before Send or SendAsync.
//
// Returns an error if:
//   - Configuration is invalid (no brokers, no topics, concurrency < 1, etc.)
//   - The transport cannot be created
//   - Already started
func (p *Producer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disp != nil {
		return ErrAlreadyStarted
	}

	// Set default transport factory if not configured
	if p.transportFactory == nil {
		p.transportFactory = defaultTransportFactory
	}

	// Set default logger if not configured
	logger := p.Logger
	if logger == nil {
		logger = &nopLogger{}
	}
	p.logger = logger

	// Register initial event listeners (only once, even if Start() is called multiple times)
	p.registerInitialListenersOnce.Do(func() {
		for _, listener := range p.InitialSendEventListeners {
			p.sendEventListeners.Add(listener)
		}
	})

	if err := p.validate(); err != nil {
		return err
	}

	p.topics = make(map[string]struct{}, len(p.Topics))
	for _, topic := range p.Topics {
		p.topics[topic] = struct{}{}
	}

	transport := p.Transport
	owns := false
	if transport == nil {
		t, err := p.transportFactory(p)
		if err != nil {
			return fmt.Errorf("failed to create transport: %w", err)
		}
		transport = t
		owns = true
	}

	shardCount := p.ShardCount
	if shardCount <= 0 {
		shardCount = p.Concurrency
	}

	p.transport = transport
	p.ownsTransport = owns
	p.disp = newDispatcher(
		transport,
		shardCount,
		p.Concurrency,
		p.QueueDepth,
		p.BlockWhenFull,
		p.logger,
		p.dispatchEvent,
	)

	p.logger.Log(kgo.LogLevelInfo, "producer started",
		"concurrency", p.Concurrency, "shards", shardCount)
	return nil
}

// Stop gracefully shuts down the producer. New sends are refused with
// ErrClosed; queued and in-flight sends are given until the context deadline
// (or CleanupTimeout, when the context has none) to complete, after which
// still-pending sends are failed with ErrShutdown. Every previously accepted
// send reaches a terminal state before Stop returns.
// Safe to call multiple times (idempotent).
func (p *Producer) Stop(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disp == nil {
		return // Already stopped or never started
	}

	p.logger.Log(kgo.LogLevelInfo, "stopping producer, draining pending sends")

	// Apply CleanupTimeout only if the context doesn't already have a deadline.
	// This respects caller-provided timeouts while providing a sensible default.
	if p.CleanupTimeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.CleanupTimeout)
			defer cancel()
		}
	}

	if err := p.disp.stop(ctx); err != nil {
		p.logger.Log(kgo.LogLevelWarn, "drain incomplete during shutdown", "error", err.Error())
	}
	p.disp = nil
	p.stopped = true

	if p.ownsTransport {
		p.transport.Close()
	}
	p.transport = nil

	p.logger.Log(kgo.LogLevelInfo, "producer stopped")
}

// Send submits a message and blocks until its transmit completes, returning
// the broker receipt or the transmit error.
//
// If ctx is cancelled while the message is still queued, Send returns the
// context error; the message itself still drains in order and its outcome is
// reported via SendEvent listeners.
func (p *Producer) Send(ctx context.Context, msg *Message) (*SendReceipt, error) {
	type result struct {
		receipt *SendReceipt
		err     error
	}
	ch := make(chan result, 1)

	err := p.SendAsync(ctx, msg, func(receipt *SendReceipt, err error) {
		ch <- result{receipt: receipt, err: err}
	})
	if err != nil {
		return nil, err
	}

	select {
	case res := <-ch:
		return res.receipt, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendAsync submits a message and returns immediately. The done callback is
// invoked exactly once, from a worker goroutine, with either a receipt or an
// error, never both and never more than once.
//
// The returned error is non-nil only for pre-flight failures (validation,
// unknown topic, producer closed, queue full); in those cases done is never
// invoked.
func (p *Producer) SendAsync(ctx context.Context, msg *Message, done func(*SendReceipt, error)) error {
	if done == nil {
		return errors.New("completion callback must not be nil")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := msg.validate(); err != nil {
		return err
	}

	p.mu.Lock()
	disp := p.disp
	topics := p.topics
	stopped := p.stopped
	p.mu.Unlock()

	if disp == nil {
		if stopped {
			return ErrClosed
		}
		return ErrNotStarted
	}
	if _, ok := topics[msg.Topic]; !ok {
		return errors.Join(ErrUnknownTopic, fmt.Errorf("topic %q is not in the configured topic list", msg.Topic))
	}

	return disp.enqueue(ctx, msg, done)
}

// Pending returns the number of accepted sends that have not yet completed
// (queued, in flight, or blocked on backpressure). Returns 0 if the producer
// is not started. O(1), no locking beyond the dispatcher reference.
func (p *Producer) Pending() int64 {
	p.mu.Lock()
	disp := p.disp
	p.mu.Unlock()

	if disp == nil {
		return 0
	}
	return disp.pendingCount()
}

// dispatchEvent fans a SendEvent out to all registered listeners.
func (p *Producer) dispatchEvent(event *SendEvent) {
	p.sendEventListeners.Visit(func(listener func(*SendEvent)) {
		listener(event)
	})
}

// validate validates the Producer's configuration.
// Called during Start() to ensure fail-fast behavior.
func (p *Producer) validate() error {
	if p.Transport == nil {
		if len(p.Brokers) == 0 {
			return errors.Join(ErrValidation, fmt.Errorf("brokers list is required"))
		}
		for i, broker := range p.Brokers {
			if broker == "" {
				return errors.Join(ErrValidation, fmt.Errorf("broker %d is empty", i))
			}
		}
	}

	if len(p.Topics) == 0 {
		return errors.Join(ErrValidation, fmt.Errorf("topics list is required"))
	}
	for i, topic := range p.Topics {
		if topic == "" {
			return errors.Join(ErrValidation, fmt.Errorf("topic %d is empty", i))
		}
	}

	if p.Concurrency < 1 {
		return errors.Join(ErrValidation, fmt.Errorf("concurrency must be >= 1, got %d", p.Concurrency))
	}

	if p.ShardCount < 0 {
		return errors.Join(ErrValidation, fmt.Errorf("shard count must not be negative, got %d", p.ShardCount))
	}

	if p.BlockWhenFull && p.QueueDepth <= 0 {
		return errors.Join(ErrValidation, fmt.Errorf("BlockWhenFull requires a positive QueueDepth"))
	}

	return nil
}
