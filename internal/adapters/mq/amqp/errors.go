package amqp

import "errors"

var (
	// ErrMalformed marks a message that can never be processed.
	ErrMalformed = errors.New("malformed job message")
	// ErrBroker wraps failures talking to the broker.
	ErrBroker = errors.New("amqp broker error")
)
