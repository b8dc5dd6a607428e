// Package wire defines the binary messages shared by the journal, the audit
// log, the Kafka topics, and the gRPC API. Messages are encoded by hand with
// the protowire primitives so the module carries no generated code; field
// numbers are part of the on-disk and on-wire contract and must never be
// reused or renumbered.
package wire

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"matchd/domain/orderbook"
)

// EventRecord is the flattened, self-describing form of one order event.
// Every variant of the in-memory event type maps onto it; fields that a
// given kind does not use stay zero.
type EventRecord struct {
	Seq         uint64 // 1: outbox sequence, assigned at publish time
	Client      uint64 // 2
	OrderID     uint64 // 3
	Kind        uint32 // 4
	Side        uint32 // 5
	Price       int64  // 6
	Qty         int64  // 7
	Outstanding int64  // 8
	Executed    int64  // 9
	Cancelled   int64  // 10
	ExecID      uint64 // 11
	State       uint32 // 12
	Time        int64  // 13: unix nanoseconds at record time
}

// NewEventRecord flattens one event recorded on order into wire form. The
// order is read after the event committed, so the quantity fields reflect
// the post-event totals.
func NewEventRecord(order *orderbook.Order, ev orderbook.Event) *EventRecord {
	r := &EventRecord{
		Client:      uint64(order.ClientID()),
		OrderID:     uint64(order.ID()),
		Kind:        uint32(ev.Kind()),
		Side:        uint32(order.Side()),
		Price:       int64(order.Price()),
		Qty:         order.Qty(),
		Outstanding: order.Outstanding(),
		Executed:    order.Executed(),
		Cancelled:   order.Cancelled(),
		State:       uint32(order.State()),
		Time:        time.Now().UnixNano(),
	}
	switch ev := ev.(type) {
	case *orderbook.ExecutionEvent:
		r.ExecID = uint64(ev.ExecID)
		r.Price = int64(ev.Price)
		r.Qty = ev.Qty
	case *orderbook.ExpiryEvent:
		r.Qty = ev.Qty
	case *orderbook.CancelAckEvent:
		r.Qty = ev.Cancelled
	}
	return r
}

func (r *EventRecord) Marshal() ([]byte, error) {
	b := make([]byte, 0, 96)
	b = appendUint(b, 1, r.Seq)
	b = appendUint(b, 2, r.Client)
	b = appendUint(b, 3, r.OrderID)
	b = appendUint(b, 4, uint64(r.Kind))
	b = appendUint(b, 5, uint64(r.Side))
	b = appendInt(b, 6, r.Price)
	b = appendInt(b, 7, r.Qty)
	b = appendInt(b, 8, r.Outstanding)
	b = appendInt(b, 9, r.Executed)
	b = appendInt(b, 10, r.Cancelled)
	b = appendUint(b, 11, r.ExecID)
	b = appendUint(b, 12, uint64(r.State))
	b = appendInt(b, 13, r.Time)
	return b, nil
}

func (r *EventRecord) Unmarshal(b []byte) error {
	*r = EventRecord{}
	return walkFields(b, func(num protowire.Number, v uint64) error {
		switch num {
		case 1:
			r.Seq = v
		case 2:
			r.Client = v
		case 3:
			r.OrderID = v
		case 4:
			r.Kind = uint32(v)
		case 5:
			r.Side = uint32(v)
		case 6:
			r.Price = int64(v)
		case 7:
			r.Qty = int64(v)
		case 8:
			r.Outstanding = int64(v)
		case 9:
			r.Executed = int64(v)
		case 10:
			r.Cancelled = int64(v)
		case 11:
			r.ExecID = v
		case 12:
			r.State = uint32(v)
		case 13:
			r.Time = int64(v)
		}
		return nil
	})
}

// appendUint writes a varint field, omitting zero values as proto3 does.
func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	return appendUint(b, num, uint64(v))
}

// walkFields walks varint fields, handing each (number, value) pair to fn.
// Non-varint fields are skipped so unknown additions stay readable.
func walkFields(b []byte, fn func(num protowire.Number, v uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("wire: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return fmt.Errorf("wire: bad varint in field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := fn(num, v); err != nil {
			return err
		}
	}
	return nil
}

// walkRaw walks all fields, handing length-delimited payloads to bytesFn and
// varints to varintFn. Used by messages with nested submessages.
func walkRaw(b []byte, varintFn func(num protowire.Number, v uint64) error, bytesFn func(num protowire.Number, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("wire: bad varint in field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			if err := varintFn(num, v); err != nil {
				return err
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("wire: bad bytes in field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			if err := bytesFn(num, v); err != nil {
				return err
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("wire: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
