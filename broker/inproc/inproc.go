// Package inproc is a single-process, in-memory broker.Broker
// implementation. It exists for tests and the bundled example binaries;
// it carries no durability or delivery guarantees and is not meant for
// production use — the real broker is an external collaborator per
// SPEC_FULL.md §6.1.
package inproc

import (
	"context"
	"fmt"
	"sync"

	"github.com/TheBitDrifter/conveyor/broker"
)

// Broker is a channel-backed, process-local pub/sub hub.
type Broker struct {
	mu   sync.Mutex
	subs map[string][]chan broker.Message
}

// New returns an empty in-process broker.
func New() *Broker {
	return &Broker{subs: make(map[string][]chan broker.Message)}
}

var _ broker.Broker = (*Broker)(nil)

// Publish sends payload on subject with no headers.
func (b *Broker) Publish(subject string, payload []byte) error {
	return b.PublishWithHeaders(subject, nil, payload)
}

// PublishWithHeaders fans payload out to every current subscriber of
// subject. Subscribers that haven't kept up are not blocked on — each
// subscriber channel is buffered, and delivery to a full channel is
// dropped rather than blocking the publisher, matching the "best-effort"
// contract in broker.Broker's docs.
func (b *Broker) PublishWithHeaders(subject string, headers map[string]string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := broker.Message{Subject: subject, Headers: headers, Data: payload}
	for _, ch := range b.subs[subject] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe returns a Subscription delivering future messages on subject.
func (b *Broker) Subscribe(subject string) (broker.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan broker.Message, 256)
	b.subs[subject] = append(b.subs[subject], ch)
	return &subscription{broker: b, subject: subject, ch: ch}, nil
}

type subscription struct {
	broker  *Broker
	subject string
	ch      chan broker.Message
}

// Next blocks until a message arrives or ctx is done.
func (s *subscription) Next(ctx context.Context) (*broker.Message, error) {
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return nil, fmt.Errorf("inproc: subscription to %s closed", s.subject)
		}
		return &msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe removes this subscription from its broker.
func (s *subscription) Unsubscribe() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	subs := s.broker.subs[s.subject]
	for i, ch := range subs {
		if ch == s.ch {
			s.broker.subs[s.subject] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	return nil
}
