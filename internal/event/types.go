package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier for this event.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeMessageDelivered   = "message.delivered"
	TypeMessageConsumed    = "message.consumed"
	TypeMessageDeferred    = "message.deferred"
	TypeDeliveryFailed     = "delivery.failed"
	TypeBroadcastCompleted = "broadcast.completed"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Delivery Events
// -----------------------------------------------------------------------------

// MessageDeliveredEvent is emitted after a message has been published into a
// user's unread set.
type MessageDeliveredEvent struct {
	baseEvent
	User      string
	MessageID string
	Size      int
}

// NewMessageDeliveredEvent creates a MessageDeliveredEvent.
func NewMessageDeliveredEvent(user, messageID string, size int) MessageDeliveredEvent {
	return MessageDeliveredEvent{
		baseEvent: newBaseEvent(TypeMessageDelivered),
		User:      user,
		MessageID: messageID,
		Size:      size,
	}
}

// DeliveryFailedEvent is emitted when a delivery aborts. Nothing was
// published for the message.
type DeliveryFailedEvent struct {
	baseEvent
	User  string
	Stage string
	Err   error
}

// NewDeliveryFailedEvent creates a DeliveryFailedEvent.
func NewDeliveryFailedEvent(user, stage string, err error) DeliveryFailedEvent {
	return DeliveryFailedEvent{
		baseEvent: newBaseEvent(TypeDeliveryFailed),
		User:      user,
		Stage:     stage,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Consumption Events
// -----------------------------------------------------------------------------

// MessageConsumedEvent is emitted after a message was printed and moved to
// the read set.
type MessageConsumedEvent struct {
	baseEvent
	User      string
	MessageID string
	Bytes     int64
}

// NewMessageConsumedEvent creates a MessageConsumedEvent.
func NewMessageConsumedEvent(user, messageID string, n int64) MessageConsumedEvent {
	return MessageConsumedEvent{
		baseEvent: newBaseEvent(TypeMessageConsumed),
		User:      user,
		MessageID: messageID,
		Bytes:     n,
	}
}

// MessageDeferredEvent is emitted when a printed message could not be moved
// to the read set and stays unread for a later pass.
type MessageDeferredEvent struct {
	baseEvent
	User      string
	MessageID string
	Err       error
}

// NewMessageDeferredEvent creates a MessageDeferredEvent.
func NewMessageDeferredEvent(user, messageID string, err error) MessageDeferredEvent {
	return MessageDeferredEvent{
		baseEvent: newBaseEvent(TypeMessageDeferred),
		User:      user,
		MessageID: messageID,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Broadcast Events
// -----------------------------------------------------------------------------

// BroadcastCompletedEvent is emitted once a roster pass has finished.
type BroadcastCompletedEvent struct {
	baseEvent
	Attempted int
	Delivered int
	Failed    []string // users whose delivery failed
}

// NewBroadcastCompletedEvent creates a BroadcastCompletedEvent.
func NewBroadcastCompletedEvent(attempted, delivered int, failed []string) BroadcastCompletedEvent {
	return BroadcastCompletedEvent{
		baseEvent: newBaseEvent(TypeBroadcastCompleted),
		Attempted: attempted,
		Delivered: delivered,
		Failed:    failed,
	}
}
