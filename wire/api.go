package wire

import "google.golang.org/protobuf/encoding/protowire"

// API request and response messages. Field numbers are frozen; see the
// package comment.

type RegisterRequest struct {
	Client uint64 // 1
}

func (m *RegisterRequest) Marshal() ([]byte, error) {
	return appendUint(nil, 1, m.Client), nil
}

func (m *RegisterRequest) Unmarshal(b []byte) error {
	*m = RegisterRequest{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		if num == 1 {
			m.Client = v
		}
		return nil
	})
}

type RegisterResponse struct {
	Accepted bool // 1
}

func (m *RegisterResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Accepted {
		b = appendUint(b, 1, 1)
	}
	return b, nil
}

func (m *RegisterResponse) Unmarshal(b []byte) error {
	*m = RegisterResponse{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		if num == 1 {
			m.Accepted = v != 0
		}
		return nil
	})
}

type SubmitRequest struct {
	Client uint64 // 1
	Side   uint32 // 2
	Price  int64  // 3: scaled ticks, zero means market
	Qty    int64  // 4
}

func (m *SubmitRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, m.Client)
	b = appendUint(b, 2, uint64(m.Side))
	b = appendInt(b, 3, m.Price)
	b = appendInt(b, 4, m.Qty)
	return b, nil
}

func (m *SubmitRequest) Unmarshal(b []byte) error {
	*m = SubmitRequest{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		switch num {
		case 1:
			m.Client = v
		case 2:
			m.Side = uint32(v)
		case 3:
			m.Price = int64(v)
		case 4:
			m.Qty = int64(v)
		}
		return nil
	})
}

type SubmitResponse struct {
	OrderID uint64 // 1
}

func (m *SubmitResponse) Marshal() ([]byte, error) {
	return appendUint(nil, 1, m.OrderID), nil
}

func (m *SubmitResponse) Unmarshal(b []byte) error {
	*m = SubmitResponse{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		if num == 1 {
			m.OrderID = v
		}
		return nil
	})
}

type CancelRequest struct {
	Client  uint64 // 1
	OrderID uint64 // 2
}

func (m *CancelRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, m.Client)
	b = appendUint(b, 2, m.OrderID)
	return b, nil
}

func (m *CancelRequest) Unmarshal(b []byte) error {
	*m = CancelRequest{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		switch num {
		case 1:
			m.Client = v
		case 2:
			m.OrderID = v
		}
		return nil
	})
}

type CancelResponse struct{}

func (m *CancelResponse) Marshal() ([]byte, error) { return nil, nil }
func (m *CancelResponse) Unmarshal(b []byte) error { return nil }

type DepthRequest struct{}

func (m *DepthRequest) Marshal() ([]byte, error) { return nil, nil }
func (m *DepthRequest) Unmarshal(b []byte) error { return nil }

type OrderEntry struct {
	Client      uint64 // 1
	Order       uint64 // 2
	Outstanding int64  // 3
}

func (m *OrderEntry) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint(b, 1, m.Client)
	b = appendUint(b, 2, m.Order)
	b = appendInt(b, 3, m.Outstanding)
	return b, nil
}

func (m *OrderEntry) Unmarshal(b []byte) error {
	*m = OrderEntry{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		switch num {
		case 1:
			m.Client = v
		case 2:
			m.Order = v
		case 3:
			m.Outstanding = int64(v)
		}
		return nil
	})
}

type LevelEntry struct {
	Price  int64        // 1
	Market bool         // 2
	Volume int64        // 3
	Orders []OrderEntry // 4
}

func (m *LevelEntry) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt(b, 1, m.Price)
	if m.Market {
		b = appendUint(b, 2, 1)
	}
	b = appendInt(b, 3, m.Volume)
	for i := range m.Orders {
		ob, err := m.Orders[i].Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendBytes(b, ob)
	}
	return b, nil
}

func (m *LevelEntry) Unmarshal(b []byte) error {
	*m = LevelEntry{}
	return walkRaw(b,
		func(num protowire.Number, v uint64) error {
			switch num {
			case 1:
				m.Price = int64(v)
			case 2:
				m.Market = v != 0
			case 3:
				m.Volume = int64(v)
			}
			return nil
		},
		func(num protowire.Number, v []byte) error {
			if num == 4 {
				var oe OrderEntry
				if err := oe.Unmarshal(v); err != nil {
					return err
				}
				m.Orders = append(m.Orders, oe)
			}
			return nil
		})
}

type DepthResponse struct {
	Bids []LevelEntry // 1
	Asks []LevelEntry // 2
}

func (m *DepthResponse) Marshal() ([]byte, error) {
	var b []byte
	var err error
	if b, err = appendLevels(b, 1, m.Bids); err != nil {
		return nil, err
	}
	if b, err = appendLevels(b, 2, m.Asks); err != nil {
		return nil, err
	}
	return b, nil
}

func appendLevels(b []byte, num protowire.Number, levels []LevelEntry) ([]byte, error) {
	for i := range levels {
		lb, err := levels[i].Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, lb)
	}
	return b, nil
}

func (m *DepthResponse) Unmarshal(b []byte) error {
	*m = DepthResponse{}
	return walkRaw(b,
		func(protowire.Number, uint64) error { return nil },
		func(num protowire.Number, v []byte) error {
			var le LevelEntry
			if err := le.Unmarshal(v); err != nil {
				return err
			}
			switch num {
			case 1:
				m.Bids = append(m.Bids, le)
			case 2:
				m.Asks = append(m.Asks, le)
			}
			return nil
		})
}

// EventsRequest opens the event stream. Client zero subscribes to all
// clients' events.
type EventsRequest struct {
	Client uint64 // 1
}

func (m *EventsRequest) Marshal() ([]byte, error) {
	return appendUint(nil, 1, m.Client), nil
}

func (m *EventsRequest) Unmarshal(b []byte) error {
	*m = EventsRequest{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		if num == 1 {
			m.Client = v
		}
		return nil
	})
}
