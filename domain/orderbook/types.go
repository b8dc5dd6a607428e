package orderbook

type ClientID uint64
type OrderID uint64
type ExecID uint64

type Side uint8

const (
	SideNone Side = iota
	Buy
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NONE"
	}
}

// Opposite returns the contra side. Only valid for Buy and Sell.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type State uint8

const (
	StateNone State = iota
	StateNew
	StateRejected
	StateActive
	StateCancelled
	StateCompleted
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateNew:
		return "NEW"
	case StateRejected:
		return "REJECTED"
	case StateActive:
		return "ACTIVE"
	case StateCancelled:
		return "CANCELLED"
	case StateCompleted:
		return "COMPLETED"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}
