package engine

import "matchd/domain/orderbook"

// Callback receives a client's own lifecycle events, one method per event
// kind. The engine invokes it synchronously, in generation order, after the
// corresponding mutation has committed. Implementations must not call back
// into the engine. Registering with a nil Callback is legal; the client's
// events are then dropped at delivery.
type Callback interface {
	OnNew(order *orderbook.Order, ev *orderbook.NewEvent)
	OnNewReject(order *orderbook.Order, ev *orderbook.NewRejectEvent)
	OnNewAck(order *orderbook.Order, ev *orderbook.NewAckEvent)
	OnCancel(order *orderbook.Order, ev *orderbook.CancelEvent)
	OnCancelReject(order *orderbook.Order, ev *orderbook.CancelRejectEvent)
	OnCancelAck(order *orderbook.Order, ev *orderbook.CancelAckEvent)
	OnExecution(order *orderbook.Order, ev *orderbook.ExecutionEvent)
	OnExpiry(order *orderbook.Order, ev *orderbook.ExpiryEvent)
}

// Observer sees every event the engine produces, for every client, after
// the owning client's callback. Used for journaling and broadcast taps.
type Observer func(order *orderbook.Order, ev orderbook.Event)
