package orderbook

// EventKind tags the closed set of order lifecycle events.
type EventKind uint8

const (
	KindNone EventKind = iota
	KindNew
	KindNewAck
	KindNewReject
	KindCancel
	KindCancelAck
	KindCancelReject
	KindExecution
	KindExpiry
)

func (k EventKind) String() string {
	switch k {
	case KindNew:
		return "NEW"
	case KindNewAck:
		return "NEW_ACK"
	case KindNewReject:
		return "NEW_REJECT"
	case KindCancel:
		return "CANCEL"
	case KindCancelAck:
		return "CANCEL_ACK"
	case KindCancelReject:
		return "CANCEL_REJECT"
	case KindExecution:
		return "EXECUTION"
	case KindExpiry:
		return "EXPIRY"
	default:
		return "NONE"
	}
}

// Event is one immutable lifecycle transition. The set of implementations
// is closed; delivery dispatches with an exhaustive type switch.
type Event interface {
	Kind() EventKind
}

// NewEvent records id assignment and the submitted terms.
type NewEvent struct {
	OrderID OrderID
	Side    Side
	Price   Price
	Qty     int64
}

// NewAckEvent acknowledges the order and sets its outstanding quantity.
type NewAckEvent struct {
	OrderID     OrderID
	Price       Price
	Outstanding int64
}

// NewRejectEvent marks a rejected submission. Defined as an extension point
// for admission checks; nothing produces it today.
type NewRejectEvent struct {
	OrderID OrderID
}

// CancelEvent records receipt of a cancel request. Informational only, the
// quantity does not change until the matching acknowledgement.
type CancelEvent struct {
	Outstanding int64
}

// CancelAckEvent moves quantity into the cancelled bucket.
type CancelAckEvent struct {
	Cancelled int64
}

// CancelRejectEvent marks a refused cancel. Extension point, unused today.
type CancelRejectEvent struct{}

// ExecutionEvent records one fill at the maker's price.
type ExecutionEvent struct {
	ExecID ExecID
	Price  Price
	Qty    int64
}

// ExpiryEvent removes unpriced residual quantity that found no contra
// liquidity.
type ExpiryEvent struct {
	Qty int64
}

func (*NewEvent) Kind() EventKind          { return KindNew }
func (*NewAckEvent) Kind() EventKind       { return KindNewAck }
func (*NewRejectEvent) Kind() EventKind    { return KindNewReject }
func (*CancelEvent) Kind() EventKind       { return KindCancel }
func (*CancelAckEvent) Kind() EventKind    { return KindCancelAck }
func (*CancelRejectEvent) Kind() EventKind { return KindCancelReject }
func (*ExecutionEvent) Kind() EventKind    { return KindExecution }
func (*ExpiryEvent) Kind() EventKind       { return KindExpiry }
