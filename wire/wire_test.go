package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"matchd/domain/orderbook"
)

func TestEventRecordRoundTrip(t *testing.T) {
	in := EventRecord{
		Seq:         42,
		Client:      3,
		OrderID:     17,
		Kind:        uint32(orderbook.KindExecution),
		Side:        uint32(orderbook.Buy),
		Price:       10050,
		Qty:         25,
		Outstanding: 5,
		Executed:    20,
		Cancelled:   0,
		ExecID:      7,
		State:       uint32(orderbook.StateActive),
		Time:        1700000000123456789,
	}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out EventRecord
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestNewEventRecordExecution(t *testing.T) {
	o := orderbook.NewOrder(3, orderbook.Buy, 10100, 30)
	o.RecordNew(5)
	o.RecordNewAck(o.Price(), o.Qty())
	ev := o.RecordExecution(9, 10050, 12)

	r := NewEventRecord(o, ev)
	if r.Client != 3 || r.OrderID != 5 {
		t.Errorf("identity fields: %+v", r)
	}
	if r.ExecID != 9 || r.Price != 10050 || r.Qty != 12 {
		t.Errorf("execution fields: %+v", r)
	}
	if r.Outstanding != 18 || r.Executed != 12 {
		t.Errorf("post-event totals: %+v", r)
	}
	if r.Kind != uint32(orderbook.KindExecution) {
		t.Errorf("kind = %d", r.Kind)
	}
	if r.Time == 0 {
		t.Error("timestamp not set")
	}
}

func TestDepthResponseRoundTrip(t *testing.T) {
	in := DepthResponse{
		Bids: []LevelEntry{
			{Price: 0, Market: true},
			{Price: 10050, Volume: 30, Orders: []OrderEntry{
				{Client: 1, Order: 2, Outstanding: 30},
			}},
		},
		Asks: []LevelEntry{
			{Price: 0, Market: true, Volume: 5, Orders: []OrderEntry{
				{Client: 2, Order: 7, Outstanding: 5},
			}},
			{Price: 10100, Volume: 10, Orders: []OrderEntry{
				{Client: 1, Order: 3, Outstanding: 4},
				{Client: 2, Order: 9, Outstanding: 6},
			}},
		},
	}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out DepthResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out.Bids) != 2 || len(out.Asks) != 2 {
		t.Fatalf("level counts: %+v", out)
	}
	if !out.Bids[0].Market || out.Bids[1].Price != 10050 {
		t.Errorf("bids: %+v", out.Bids)
	}
	if len(out.Asks[1].Orders) != 2 || out.Asks[1].Orders[1].Outstanding != 6 {
		t.Errorf("asks: %+v", out.Asks)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	// A record marshalled by a future revision with extra fields must still
	// decode the fields this revision knows.
	in := EventRecord{Seq: 1, Client: 2, Kind: uint32(orderbook.KindNewAck)}
	b, err := in.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	extra := append([]byte{0xf2, 0x07, 0x03, 'x', 'y', 'z'}, b...) // field 126, bytes

	var out EventRecord
	if err := out.Unmarshal(extra); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if out.Seq != 1 || out.Client != 2 {
		t.Errorf("known fields lost: %+v", out)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{[]byte("first"), {}, []byte("third record")}
	for _, p := range payloads {
		buf.Write(Frame(p))
	}

	for i, want := range payloads {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d: got %q, want %q", i, got, want)
		}
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Errorf("after last frame: got %v, want io.EOF", err)
	}
}

func TestFrameCorruptionDetected(t *testing.T) {
	f := Frame([]byte("payload"))
	f[len(f)-1] ^= 0xff
	if _, err := ReadFrame(bytes.NewReader(f)); !errors.Is(err, ErrFrameCorrupt) {
		t.Errorf("got %v, want %v", err, ErrFrameCorrupt)
	}
}

func TestFrameTruncated(t *testing.T) {
	f := Frame([]byte("payload"))
	if _, err := ReadFrame(bytes.NewReader(f[:len(f)-3])); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated body: got %v", err)
	}
	if _, err := ReadFrame(bytes.NewReader(f[:5])); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated header: got %v", err)
	}
}
