// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/twmb/franz-go/pkg/kgo"
)

// mockTransport is a mock implementation of Transport for testing.
type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Transmit(ctx context.Context, msg *Message) (*SendReceipt, error) {
	args := m.Called(ctx, msg)
	receipt, _ := args.Get(0).(*SendReceipt)
	return receipt, args.Error(1)
}

func (m *mockTransport) Close() {
	m.Called()
}

// funcTransport adapts a function to the Transport interface, for tests that
// need custom transmit behavior without mock expectations.
type funcTransport struct {
	transmit func(ctx context.Context, msg *Message) (*SendReceipt, error)
	close    func()
}

func (f *funcTransport) Transmit(ctx context.Context, msg *Message) (*SendReceipt, error) {
	return f.transmit(ctx, msg)
}

func (f *funcTransport) Close() {
	if f.close != nil {
		f.close()
	}
}

// okTransport acknowledges every message immediately.
func okTransport() *funcTransport {
	return &funcTransport{
		transmit: func(_ context.Context, msg *Message) (*SendReceipt, error) {
			return &SendReceipt{MessageID: "mock", Topic: msg.Topic}, nil
		},
	}
}

// mockKafkaClient is a mock implementation of kafkaClient for testing.
type mockKafkaClient struct {
	mock.Mock
}

func (m *mockKafkaClient) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	args := m.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (m *mockKafkaClient) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockKafkaClient) Close() {
	m.Called()
}
