// Package broker defines the publish/subscribe abstraction the
// coordinator and system-worker processes speak over. The concrete
// transport (NATS, in the system this module's predecessor prototype
// targeted) is an external collaborator; this package only specifies the
// contract and ships one non-production implementation, broker/inproc,
// for tests and bundled examples.
package broker

import "context"

// Message is one payload received from a Subscription, with any headers
// the publisher attached.
type Message struct {
	Subject string
	Headers map[string]string
	Data    []byte
}

// Broker is the minimum publish/subscribe contract the coordinator and
// system runtime need. Delivery is best-effort and unordered across
// subjects — concrete implementations may offer stronger guarantees, but
// nothing in this module relies on them.
type Broker interface {
	// Publish sends payload on subject with no headers.
	Publish(subject string, payload []byte) error
	// PublishWithHeaders sends payload on subject with the given headers
	// attached, used for the msg-type/tick-id/instance-id reserved
	// headers.
	PublishWithHeaders(subject string, headers map[string]string, payload []byte) error
	// Subscribe returns a Subscription delivering every message published
	// on subject from this point forward.
	Subscribe(subject string) (Subscription, error)
}

// Subscription yields messages published on the subject it was created
// for.
type Subscription interface {
	// Next blocks until a message arrives or ctx is done.
	Next(ctx context.Context) (*Message, error)
	// Unsubscribe stops delivery and releases any resources held.
	Unsubscribe() error
}
