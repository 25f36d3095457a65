package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Delivery is synchronous: Publish calls every handler subscribed to
// event.Type() in the caller goroutine, in subscription order. Handler errors
// are joined and returned from Publish. Handlers may subscribe or cancel
// subscriptions from inside a delivery; the change applies to the next Publish.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type().
	Publish(event Event) error
	// Subscribe registers a handler for eventType and returns a handle that can
	// cancel it later.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error
	// Subscribers returns the number of active subscriptions to eventType.
	Subscribers(eventType string) int
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is invoked per delivered event.
type EventHandler func(event Event) error

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}
