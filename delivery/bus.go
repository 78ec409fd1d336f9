// Package delivery hands dispatched pushes to consumers over an in-process
// pub/sub bus.
package delivery

import (
	"sync"

	"github.com/cskr/pubsub"
	"github.com/psanford/wappush/dispatch"
	log "github.com/sirupsen/logrus"
)

const DefaultCapacity = 128

func ConsumerTopic(name string) string {
	return "consumer/" + name
}

func PermissionTopic(permission string) string {
	return "permission/" + permission
}

// Subscription receives dispatch.Delivery values.
type Subscription chan interface{}

// Bus implements dispatch.Sink. Targeted deliveries go to the consumer
// topic of the target, broadcasts to the topic of the required permission.
type Bus struct {
	ps *pubsub.PubSub

	mu     sync.RWMutex
	closed bool
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{ps: pubsub.New(capacity)}
}

// Deliver publishes d. It blocks while a subscriber's buffer is full.
func (b *Bus) Deliver(d dispatch.Delivery) {
	topic := PermissionTopic(d.Permission)
	if d.Target != nil {
		topic = ConsumerTopic(d.Target.Name)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		log.WithFields(log.Fields{
			"topic": topic,
			"tid":   d.Envelope.TransactionID,
		}).Warn("delivery after bus close dropped")
		return
	}

	log.WithFields(log.Fields{
		"topic":     topic,
		"mime_type": d.Envelope.MimeType,
		"len":       len(d.Envelope.Data),
	}).Debug("publish delivery")
	b.ps.Pub(d, topic)
}

// Subscribe returns a channel receiving deliveries for topics. On a closed
// bus the returned channel is already closed.
func (b *Bus) Subscribe(topics ...string) Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		ch := make(Subscription)
		close(ch)
		return ch
	}
	log.WithField("topics", topics).Debug("subscribe")
	return b.ps.Sub(topics...)
}

// Unsubscribe removes ch from topics, or from every topic when none are
// given. Pending deliveries on ch are discarded.
func (b *Bus) Unsubscribe(ch Subscription, topics ...string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	// The bus goroutine may be blocked sending to ch; keep it drained until
	// the unsubscribe has gone through.
	done := make(chan struct{})
	go func() {
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()
	b.ps.Unsub(ch, topics...)
	close(done)
	log.WithField("topics", topics).Debug("unsubscribe")
}

// Close shuts the bus down and closes every subscription channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.ps.Shutdown()
}
