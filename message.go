// SPDX-FileCopyrightText: 2026 The fifoq Authors
// SPDX-License-Identifier: Apache-2.0

package fifoq

import (
	"errors"
	"fmt"
)

// Message is a single payload submitted to the producer. Messages are treated
// as immutable once submitted; callers must not modify a Message (including
// Body and Properties) after passing it to Send or SendAsync.
type Message struct {
	// Topic is the destination topic. Required. Must be one of the topics
	// the producer was configured with.
	Topic string

	// Tag is an optional broker-side filter label.
	Tag string

	// Keys are optional caller-supplied identifiers, typically used for
	// message lookup on the broker side.
	Keys []string

	// Group is the ordering key. Messages sharing a non-empty Group are
	// transmitted strictly in submission order, one at a time. An empty
	// Group routes the message to the default ordering lane.
	Group string

	// Body is the message payload. Required.
	Body []byte

	// Properties are optional user properties carried alongside the payload.
	Properties map[string]string
}

// validate checks the fields a message must carry before it can be queued.
func (m *Message) validate() error {
	if m == nil {
		return errors.Join(ErrValidation, fmt.Errorf("message is nil"))
	}
	if m.Topic == "" {
		return errors.Join(ErrValidation, fmt.Errorf("message topic is required"))
	}
	if len(m.Body) == 0 {
		return errors.Join(ErrValidation, fmt.Errorf("message body is required"))
	}
	return nil
}

// SendReceipt is the success result of a transmit, passed through from the
// transport. Its contents are opaque to the dispatching core.
type SendReceipt struct {
	// MessageID uniquely identifies the delivered message on the broker.
	MessageID string

	// Topic is the topic the message was delivered to.
	Topic string

	// Partition is the broker partition that accepted the message.
	Partition int32

	// Offset is the position assigned within the partition.
	Offset int64
}
