// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
)

// kafkaClient is an interface for the franz-go Kafka client methods we need.
// This allows us to mock the client for testing while using the real
// kgo.Client in production.
type kafkaClient interface {
	// ProduceSync produces records synchronously and waits for broker acknowledgment.
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults

	// Flush flushes all buffered records and waits for them to be sent.
	Flush(ctx context.Context) error

	// Close closes the Kafka client and releases resources.
	Close()
}

// Verify that *kgo.Client implements kafkaClient interface at compile time.
var _ kafkaClient = (*kgo.Client)(nil)

// clientFactory is a function that creates a Kafka client from options.
// This allows dependency injection for testing.
type clientFactory func(opts ...kgo.Opt) (kafkaClient, error)

// defaultClientFactory is the production client factory that uses franz-go.
func defaultClientFactory(opts ...kgo.Opt) (kafkaClient, error) {
	return kgo.NewClient(opts...)
}

// KafkaTransport is the default Transport, backed by a franz-go client. Each
// Transmit is a synchronous produce: it does not return until the broker
// acknowledges or rejects the record, which is what lets the dispatcher
// guarantee per-group ordering.
//
// Thread Safety: Transmit is safe for concurrent use by multiple goroutines.
type KafkaTransport struct {
	// Brokers is the list of Kafka broker addresses.
	// Required. Each address must be in "host:port" format.
	Brokers []string

	// SASL configures SASL authentication.
	// Optional. If nil, no authentication is used.
	SASL sasl.Mechanism

	// TLS configures TLS encryption.
	// Optional. If nil, plaintext connections are used.
	TLS *tls.Config

	// RequestTimeout bounds each Transmit. Zero or negative values mean no
	// timeout. Default: 0 (no timeout).
	RequestTimeout time.Duration

	// AllowAutoTopicCreation enables automatic topic creation when producing
	// to non-existent topics. Default: false.
	AllowAutoTopicCreation bool

	// Logger is the logger instance (same interface as franz-go).
	// Optional. If nil, a no-op logger will be used.
	Logger kgo.Logger

	// clientFactory is for internal use only (testing hook).
	clientFactory clientFactory

	// clientMu protects the client field during Start/Close.
	clientMu sync.Mutex
	client   kafkaClient
}

// Start connects to Kafka. Called by the producer when it builds the default
// transport; callers constructing a KafkaTransport directly must call it
// before Transmit.
func (t *KafkaTransport) Start() error {
	t.clientMu.Lock()
	defer t.clientMu.Unlock()

	if t.client != nil {
		return ErrAlreadyStarted
	}

	if t.clientFactory == nil {
		t.clientFactory = defaultClientFactory
	}
	if t.Logger == nil {
		t.Logger = &nopLogger{}
	}

	if len(t.Brokers) == 0 {
		return errors.Join(ErrValidation, fmt.Errorf("brokers list is required"))
	}

	client, err := t.clientFactory(t.toKgoOpts()...)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}

	t.client = client
	return nil
}

// Transmit produces one record synchronously and maps the broker's
// acknowledgment to a SendReceipt.
func (t *KafkaTransport) Transmit(ctx context.Context, msg *Message) (*SendReceipt, error) {
	t.clientMu.Lock()
	client := t.client
	t.clientMu.Unlock()

	if client == nil {
		return nil, ErrNotStarted
	}

	if t.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.RequestTimeout)
		defer cancel()
	}

	results := client.ProduceSync(ctx, recordFromMessage(msg))
	if err := results.FirstErr(); err != nil {
		return nil, errors.Join(ErrTransport, fmt.Errorf("broker rejected message"), err)
	}

	record := results[0].Record
	return &SendReceipt{
		MessageID: fmt.Sprintf("%s-%d@%d", record.Topic, record.Partition, record.Offset),
		Topic:     record.Topic,
		Partition: record.Partition,
		Offset:    record.Offset,
	}, nil
}

// Close flushes and closes the underlying client.
// Safe to call multiple times (idempotent).
func (t *KafkaTransport) Close() {
	t.clientMu.Lock()
	defer t.clientMu.Unlock()

	if t.client == nil {
		return
	}

	if err := t.client.Flush(context.Background()); err != nil {
		t.Logger.Log(kgo.LogLevelWarn, "flush incomplete during transport close", "error", err.Error())
	}
	t.client.Close()
	t.client = nil
}

// recordFromMessage builds a franz-go record from a message. The ordering
// group becomes the record key so the broker keeps same-group messages on one
// partition; tag, keys, and user properties travel as record headers.
func recordFromMessage(msg *Message) *kgo.Record {
	headers := make([]kgo.RecordHeader, 0, len(msg.Properties)+2)
	if msg.Tag != "" {
		headers = append(headers, kgo.RecordHeader{Key: "tag", Value: []byte(msg.Tag)})
	}
	if len(msg.Keys) > 0 {
		headers = append(headers, kgo.RecordHeader{Key: "keys", Value: []byte(strings.Join(msg.Keys, ","))})
	}

	// Sort property names so header order is deterministic.
	names := make([]string, 0, len(msg.Properties))
	for name := range msg.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		headers = append(headers, kgo.RecordHeader{Key: name, Value: []byte(msg.Properties[name])})
	}

	var key []byte
	if msg.Group != "" {
		key = []byte(msg.Group)
	}

	return &kgo.Record{
		Topic:   msg.Topic,
		Key:     key,
		Value:   msg.Body,
		Headers: headers,
	}
}

// toKgoOpts converts the transport's configuration to franz-go client options.
func (t *KafkaTransport) toKgoOpts() []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(t.Brokers...),
		// One request per broker at a time keeps broker-side ordering aligned
		// with the dispatcher's per-shard serialization.
		kgo.MaxProduceRequestsInflightPerBroker(1),
	}

	if t.Logger != nil {
		opts = append(opts, kgo.WithLogger(t.Logger))
	}

	if t.AllowAutoTopicCreation {
		opts = append(opts, kgo.AllowAutoTopicCreation())
	}

	if t.SASL != nil {
		opts = append(opts, kgo.SASL(t.SASL))
	}

	if t.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(t.TLS))
	}

	if t.RequestTimeout > 0 {
		opts = append(opts, kgo.RequestTimeoutOverhead(t.RequestTimeout))
	}

	return opts
}
