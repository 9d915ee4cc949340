// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// BreakerTransport wraps a Transport with a circuit breaker. When the inner
// transport fails repeatedly, the breaker opens and transmits fail fast
// without touching the broker, until the reset timeout elapses. Rejections
// from an open breaker complete the send with a transport error like any
// other transmit failure; they never block the shard.
type BreakerTransport struct {
	inner   Transport
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerTransport wraps inner with a circuit breaker configured by
// settings. Pass the result as Producer.Transport; the caller keeps
// ownership of inner's lifecycle rules (the producer closes a transport it
// built itself, never one handed to it).
func NewBreakerTransport(inner Transport, settings gobreaker.Settings) *BreakerTransport {
	return &BreakerTransport{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Transmit delegates to the inner transport through the breaker.
func (b *BreakerTransport) Transmit(ctx context.Context, msg *Message) (*SendReceipt, error) {
	v, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Transmit(ctx, msg)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Join(ErrTransport, err)
		}
		return nil, err
	}
	return v.(*SendReceipt), nil
}

// Close closes the inner transport.
func (b *BreakerTransport) Close() {
	b.inner.Close()
}

// State returns the breaker's current state (closed, half-open, or open).
func (b *BreakerTransport) State() gobreaker.State {
	return b.breaker.State()
}

var _ Transport = (*BreakerTransport)(nil)
