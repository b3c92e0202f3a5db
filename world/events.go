package world

import (
	"github.com/sourceplane/simkernel/internal/eventbus"
)

// SendEvent publishes payload under type on the generic event bus. Not
// visible to PollEvent/subscribers until the next UpdateEventBuses.
func (w *World) SendEvent(eventType string, payload any) {
	w.events.Generic.Publish(eventbus.Event{Type: eventType, Payload: payload})
}

// PollEvent drains and returns every readable event of eventType on the
// generic bus. A drained event is not returned by a later poll.
func (w *World) PollEvent(eventType string) []any {
	return payloadsOf(w.events.Generic.Drain(eventType))
}

// PollECSEvent drains and returns every readable event of eventType on
// the ECS-native bus (job_completed, entity_died, and similar native-
// system events).
func (w *World) PollECSEvent(eventType string) []any {
	return payloadsOf(w.events.ECS.Drain(eventType))
}

// PollJobEvent drains and returns every readable event of eventType on
// the job-lifecycle-restricted bus.
func (w *World) PollJobEvent(eventType string) []any {
	return payloadsOf(w.events.Jobs.Drain(eventType))
}

// UpdateEventBuses atomically promotes every namespace's incoming buffer
// to readable and fires subscribers, in ECS, Jobs, Generic order. Calling
// this directly (outside Tick) is how tests drive event visibility
// between individual system runs.
func (w *World) UpdateEventBuses() { w.events.FlushAll() }

// Subscribe registers handler on the generic bus for eventType (empty
// matches every type). Returns an id usable with Unsubscribe.
func (w *World) Subscribe(eventType string, handler func(eventbus.Event)) eventbus.SubscriptionID {
	return w.events.Generic.Subscribe(eventType, w.guarded(handler))
}

// Unsubscribe removes a generic-bus subscription.
func (w *World) Unsubscribe(id eventbus.SubscriptionID) { w.events.Generic.Unsubscribe(id) }

// SubscribeJobEventBus registers handler on the job-lifecycle bus.
func (w *World) SubscribeJobEventBus(eventType string, handler func(eventbus.Event)) eventbus.SubscriptionID {
	return w.events.Jobs.Subscribe(eventType, w.guarded(handler))
}

// UnsubscribeJobEventBus removes a job-bus subscription.
func (w *World) UnsubscribeJobEventBus(id eventbus.SubscriptionID) { w.events.Jobs.Unsubscribe(id) }

// guarded wraps a subscriber so a panic is logged and swallowed rather
// than propagating into the flush that triggered it.
func (w *World) guarded(handler func(eventbus.Event)) func(eventbus.Event) {
	return func(evt eventbus.Event) {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Sugar().Warnf("subscriber panic for event %q: %v", evt.Type, r)
			}
		}()
		handler(evt)
	}
}

func payloadsOf(events []eventbus.Event) []any {
	out := make([]any, len(events))
	for i, e := range events {
		out[i] = e.Payload
	}
	return out
}
