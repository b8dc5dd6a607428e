package orderbook

import "fmt"

// Order owns the append-only event history for one order and derives state
// and quantities from it. Orders are owned by their client's registry for
// their whole lifetime; the book refers to them only by Handle.
//
// Invariant after acknowledgement: qty == outstanding + executed + cancelled.
type Order struct {
	client ClientID
	id     OrderID
	side   Side
	price  Price
	qty    int64

	outstanding int64
	executed    int64
	cancelled   int64
	state       State
	events      []Event
}

// NewOrder creates an order in state NONE. The order id is assigned later by
// RecordNew.
func NewOrder(client ClientID, side Side, price Price, qty int64) *Order {
	return &Order{
		client: client,
		side:   side,
		price:  price,
		qty:    qty,
		state:  StateNone,
	}
}

func (o *Order) ClientID() ClientID { return o.client }
func (o *Order) ID() OrderID        { return o.id }
func (o *Order) Side() Side         { return o.side }
func (o *Order) Price() Price       { return o.price }
func (o *Order) Qty() int64         { return o.qty }
func (o *Order) Outstanding() int64 { return o.outstanding }
func (o *Order) Executed() int64    { return o.executed }
func (o *Order) Cancelled() int64   { return o.cancelled }
func (o *Order) State() State       { return o.state }

// Events returns the recorded history, oldest first. Callers must treat it
// as read-only.
func (o *Order) Events() []Event { return o.events }

// Handle returns the stable reference the book stores for this order.
func (o *Order) Handle() Handle {
	return Handle{Client: o.client, Order: o.id}
}

// RecordNew assigns the order id. Requires a fresh order with no history.
func (o *Order) RecordNew(id OrderID) *NewEvent {
	if len(o.events) != 0 || o.state != StateNone {
		panic(fmt.Sprintf("orderbook: RecordNew on order in state %v", o.state))
	}
	ev := &NewEvent{OrderID: id, Side: o.side, Price: o.price, Qty: o.qty}
	o.events = append(o.events, ev)
	o.id = id
	o.state = StateNew
	return ev
}

// RecordNewAck activates the order and sets its outstanding quantity.
func (o *Order) RecordNewAck(price Price, outstanding int64) *NewAckEvent {
	if o.state != StateNew {
		panic(fmt.Sprintf("orderbook: RecordNewAck on order in state %v", o.state))
	}
	ev := &NewAckEvent{OrderID: o.id, Price: price, Outstanding: outstanding}
	o.events = append(o.events, ev)
	o.outstanding = outstanding
	o.state = StateActive
	return ev
}

// RecordNewReject terminates a NEW order without activating it.
func (o *Order) RecordNewReject() *NewRejectEvent {
	if o.state != StateNew {
		panic(fmt.Sprintf("orderbook: RecordNewReject on order in state %v", o.state))
	}
	ev := &NewRejectEvent{OrderID: o.id}
	o.events = append(o.events, ev)
	o.state = StateRejected
	return ev
}

// RecordCancel notes a cancel request against an active order. No quantity
// moves until RecordCancelAck.
func (o *Order) RecordCancel() *CancelEvent {
	if o.state != StateActive {
		panic(fmt.Sprintf("orderbook: RecordCancel on order in state %v", o.state))
	}
	ev := &CancelEvent{Outstanding: o.outstanding}
	o.events = append(o.events, ev)
	return ev
}

// RecordCancelAck moves qty from outstanding into the cancelled bucket.
// Caller guarantees qty <= outstanding.
func (o *Order) RecordCancelAck(qty int64) *CancelAckEvent {
	if qty > o.outstanding {
		panic(fmt.Sprintf("orderbook: cancel %d exceeds outstanding %d", qty, o.outstanding))
	}
	ev := &CancelAckEvent{Cancelled: qty}
	o.events = append(o.events, ev)
	o.outstanding -= qty
	o.cancelled += qty
	o.state = StateCancelled
	return ev
}

// RecordCancelReject notes a refused cancel. Extension point, unused today.
func (o *Order) RecordCancelReject() *CancelRejectEvent {
	ev := &CancelRejectEvent{}
	o.events = append(o.events, ev)
	return ev
}

// RecordExecution fills qty at price. Caller guarantees qty <= outstanding.
// Reaching zero outstanding completes the order unless it was cancelled.
func (o *Order) RecordExecution(execID ExecID, price Price, qty int64) *ExecutionEvent {
	if qty > o.outstanding {
		panic(fmt.Sprintf("orderbook: execution %d exceeds outstanding %d", qty, o.outstanding))
	}
	ev := &ExecutionEvent{ExecID: execID, Price: price, Qty: qty}
	o.events = append(o.events, ev)
	o.outstanding -= qty
	o.executed += qty
	if o.outstanding == 0 && o.state != StateCancelled {
		o.state = StateCompleted
	}
	return ev
}

// RecordExpiry removes unpriced residual quantity.
func (o *Order) RecordExpiry(qty int64) *ExpiryEvent {
	if qty > o.outstanding {
		panic(fmt.Sprintf("orderbook: expiry %d exceeds outstanding %d", qty, o.outstanding))
	}
	ev := &ExpiryEvent{Qty: qty}
	o.events = append(o.events, ev)
	o.outstanding -= qty
	o.state = StateExpired
	return ev
}
