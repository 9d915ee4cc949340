// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hangingTransport blocks every transmit until its context is cancelled.
type hangingTransport struct{}

func (hangingTransport) Transmit(ctx context.Context, _ *Message) (*SendReceipt, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (hangingTransport) Close() {}

// TestStop_CleanupTimeoutRespectsCaller tests that CleanupTimeout only
// applies when the caller's context has no deadline.
func TestStop_CleanupTimeoutRespectsCaller(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		cleanupTimeout   time.Duration
		callerTimeout    time.Duration // 0 = no caller deadline
		expectedDuration time.Duration
	}{
		{
			name:             "cleanup_timeout_no_caller_deadline",
			cleanupTimeout:   200 * time.Millisecond,
			expectedDuration: 200 * time.Millisecond,
		},
		{
			name:             "cleanup_timeout_with_caller_deadline_shorter",
			cleanupTimeout:   2 * time.Second,
			callerTimeout:    100 * time.Millisecond,
			expectedDuration: 100 * time.Millisecond,
		},
		{
			name:             "no_cleanup_timeout_with_caller_deadline",
			cleanupTimeout:   0,
			callerTimeout:    150 * time.Millisecond,
			expectedDuration: 150 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt := tt
			t.Parallel()
			p := &Producer{
				Topics:         []string{"fifo-topic"},
				Concurrency:    1,
				CleanupTimeout: tt.cleanupTimeout,
				Transport:      hangingTransport{},
			}
			require.NoError(t, p.Start())

			sendErr := make(chan error, 1)
			err := p.SendAsync(context.Background(),
				&Message{Topic: "fifo-topic", Body: []byte("x")},
				func(_ *SendReceipt, err error) { sendErr <- err })
			require.NoError(t, err)

			ctx := context.Background()
			if tt.callerTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.callerTimeout)
				defer cancel()
			}

			start := time.Now()
			p.Stop(ctx)
			elapsed := time.Since(start)

			assert.InDelta(t,
				tt.expectedDuration.Seconds(),
				elapsed.Seconds(),
				(100 * time.Millisecond).Seconds(),
				"Stop should return near the effective deadline")

			// The hanging send still reached a terminal state.
			select {
			case err := <-sendErr:
				assert.ErrorIs(t, err, ErrShutdown)
			case <-time.After(time.Second):
				t.Fatal("pending send never completed")
			}
		})
	}
}

// TestStop_NoTimeoutDrainsEverything tests that without any deadline Stop
// waits for the full queue to drain.
func TestStop_NoTimeoutDrainsEverything(t *testing.T) {
	t.Parallel()

	transport := newOrderRecorder(time.Millisecond)
	p := &Producer{
		Topics:      []string{"fifo-topic"},
		Concurrency: 2,
		Transport:   transport,
	}
	require.NoError(t, p.Start())

	completions := make(chan error, 20)
	for iter := 0; iter < 20; iter++ {
		err := p.SendAsync(context.Background(),
			&Message{Topic: "fifo-topic", Group: "lane", Body: []byte("x")},
			func(_ *SendReceipt, err error) { completions <- err })
		require.NoError(t, err)
	}

	p.Stop(context.Background())

	for iter := 0; iter < 20; iter++ {
		select {
		case err := <-completions:
			assert.NoError(t, err)
		default:
			t.Fatal("a send was dropped during graceful stop")
		}
	}
}
