// Package eventbus implements a double-buffered publish/subscribe bus.
// Events published during a tick land in the incoming buffer; they become
// visible to readers only after a flush promotes incoming into the
// readable queue. Readable events stay queued until a poll drains them,
// so an unpolled event survives any number of later empty flushes.
package eventbus

import "github.com/google/uuid"

// Event is one published occurrence: a type tag plus an opaque payload.
type Event struct {
	Type    string
	Payload any
}

// Subscription ids are opaque UUIDs — every pack repo needing a stable
// opaque handle for unsubscribe reaches for google/uuid.
type SubscriptionID string

type subscriber struct {
	id      SubscriptionID
	typ     string // empty means "all types"
	handler func(Event)
}

// Bus is a double-buffered pub/sub channel. One Bus instance is used per
// namespace (generic, ECS-native, job-lifecycle).
type Bus struct {
	incoming []Event
	readable []Event
	subs     []subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Publish appends an event to the incoming buffer. It is not visible to
// Readable() or subscribers until the next Flush.
func (b *Bus) Publish(evt Event) {
	b.incoming = append(b.incoming, evt)
}

// Subscribe registers handler to be invoked, synchronously and in
// registration order, for every event of typ flushed from then on. An
// empty typ subscribes to every event type. Returns an id usable with
// Unsubscribe.
func (b *Bus) Subscribe(typ string, handler func(Event)) SubscriptionID {
	id := SubscriptionID(uuid.NewString())
	b.subs = append(b.subs, subscriber{id: id, typ: typ, handler: handler})
	return id
}

// Unsubscribe removes a previously registered subscriber. A stale id is a
// no-op.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Flush promotes incoming into the readable queue (appending to whatever
// a prior Flush left undrained), clears incoming, and fires every
// matching subscriber synchronously over the newly promoted batch in
// publish order — this is update_event_buses.
func (b *Bus) Flush() {
	batch := b.incoming
	b.incoming = nil
	b.readable = append(b.readable, batch...)
	for _, evt := range batch {
		for _, s := range b.subs {
			if s.typ == "" || s.typ == evt.Type {
				s.handler(evt)
			}
		}
	}
}

// Readable returns every undrained event currently in the readable queue,
// across every Flush since the queue was last drained.
func (b *Bus) Readable() []Event {
	return append([]Event(nil), b.readable...)
}

// Drain removes and returns every readable event of typ, leaving events
// of other types in the queue. This is poll_event's drain semantics.
func (b *Bus) Drain(typ string) []Event {
	var matched, rest []Event
	for _, evt := range b.readable {
		if evt.Type == typ {
			matched = append(matched, evt)
		} else {
			rest = append(rest, evt)
		}
	}
	b.readable = rest
	return matched
}
