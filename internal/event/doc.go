// Package event provides a small synchronous pub-sub bus that the mailbox
// engines use to report what they did without knowing who is listening.
//
// The delivery engine publishes [MessageDeliveredEvent] and
// [DeliveryFailedEvent], the consumption engine publishes
// [MessageConsumedEvent] and [MessageDeferredEvent], and the broadcast
// dispatcher publishes [BroadcastCompletedEvent] once per roster pass. The
// command layer subscribes to turn these into log records.
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine; a panicking handler is recovered and logged so the
// remaining handlers still run.
//
// # Basic Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeMessageDelivered, func(e event.Event) {
//	    d := e.(event.MessageDeliveredEvent)
//	    log.Printf("delivered %s to %s", d.MessageID, d.User)
//	})
//	bus.SubscribeAll(func(e event.Event) { ... })
//
// Event types follow the pattern "category.action": message.delivered,
// message.consumed, message.deferred, delivery.failed, broadcast.completed.
package event
