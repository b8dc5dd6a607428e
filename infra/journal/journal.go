// Package journal is the durable event outbox. Every event the engine emits
// is appended here before anything is published; the broadcaster drains
// pending entries to Kafka and marks them off. Entries track delivery state
// only; the journal is never replayed into the matching engine.
package journal

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// State is an entry's position in the delivery pipeline.
type State uint8

const (
	StateNew   State = iota // appended, not yet handed to the producer
	StateSent               // handed to the producer, ack outstanding
	StateAcked              // delivered, eligible for pruning
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return fmt.Sprintf("STATE(%d)", uint8(s))
	}
}

// Entry is one outbox record. Seq lives in the key; the value carries the
// delivery metadata and the opaque event payload.
type Entry struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt time.Time
	Payload     []byte
}

// Journal is a pebble-backed outbox keyed by sequence number. Safe for one
// appender plus one drainer.
type Journal struct {
	db *pebble.DB
}

const keyPrefix = "evt/"

// value layout: [state:1][retries:4 LE][lastAttempt unix nanos:8 LE][payload].
const valueHeaderSize = 13

func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dir, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores payload under seq in state NEW. Sequence numbers must be
// assigned monotonically by the caller.
func (j *Journal) Append(seq uint64, payload []byte) error {
	e := Entry{Seq: seq, State: StateNew, Payload: payload}
	if err := j.db.Set(key(seq), encodeValue(&e), pebble.Sync); err != nil {
		return fmt.Errorf("journal: append %d: %w", seq, err)
	}
	return nil
}

// ScanPending walks entries still awaiting delivery (NEW or SENT) in
// sequence order. Returning false from fn stops the scan.
func (j *Journal) ScanPending(fn func(e *Entry) bool) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return fmt.Errorf("journal: iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		e, err := decodeEntry(iter.Key(), iter.Value())
		if err != nil {
			return err
		}
		if e.State == StateAcked {
			continue
		}
		if !fn(e) {
			break
		}
	}
	return iter.Error()
}

// MarkSent moves seq to SENT and stamps the attempt.
func (j *Journal) MarkSent(seq uint64) error {
	return j.transition(seq, StateSent)
}

// MarkAcked moves seq to ACKED.
func (j *Journal) MarkAcked(seq uint64) error {
	return j.transition(seq, StateAcked)
}

func (j *Journal) transition(seq uint64, to State) error {
	e, err := j.get(seq)
	if err != nil {
		return err
	}
	e.State = to
	if to == StateSent {
		e.Retries++
		e.LastAttempt = time.Now()
	}
	if err := j.db.Set(key(seq), encodeValue(e), pebble.Sync); err != nil {
		return fmt.Errorf("journal: update %d: %w", seq, err)
	}
	return nil
}

// Prune deletes ACKED entries with sequence at or below upTo.
func (j *Journal) Prune(upTo uint64) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return fmt.Errorf("journal: iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		e, err := decodeEntry(iter.Key(), iter.Value())
		if err != nil {
			return err
		}
		if e.Seq > upTo {
			break
		}
		if e.State != StateAcked {
			continue
		}
		if err := j.db.Delete(key(e.Seq), pebble.Sync); err != nil {
			return fmt.Errorf("journal: prune %d: %w", e.Seq, err)
		}
	}
	return iter.Error()
}

// LastSeq returns the highest stored sequence number, or zero when the
// journal is empty. Used to seed the outbox sequencer on restart.
func (j *Journal) LastSeq() (uint64, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return 0, fmt.Errorf("journal: iterator: %w", err)
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	var seq uint64
	if _, err := fmt.Sscanf(string(iter.Key()), keyPrefix+"%d", &seq); err != nil {
		return 0, fmt.Errorf("journal: bad key %q: %w", iter.Key(), err)
	}
	return seq, nil
}

func (j *Journal) get(seq uint64) (*Entry, error) {
	v, closer, err := j.db.Get(key(seq))
	if err != nil {
		return nil, fmt.Errorf("journal: get %d: %w", seq, err)
	}
	defer closer.Close()
	return decodeEntry(key(seq), v)
}

func key(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func encodeValue(e *Entry) []byte {
	v := make([]byte, valueHeaderSize+len(e.Payload))
	v[0] = byte(e.State)
	binary.LittleEndian.PutUint32(v[1:5], e.Retries)
	var ns int64
	if !e.LastAttempt.IsZero() {
		ns = e.LastAttempt.UnixNano()
	}
	binary.LittleEndian.PutUint64(v[5:13], uint64(ns))
	copy(v[valueHeaderSize:], e.Payload)
	return v
}

func decodeEntry(k, v []byte) (*Entry, error) {
	var seq uint64
	if _, err := fmt.Sscanf(string(k), keyPrefix+"%d", &seq); err != nil {
		return nil, fmt.Errorf("journal: bad key %q: %w", k, err)
	}
	if len(v) < valueHeaderSize {
		return nil, fmt.Errorf("journal: short value for %d (%d bytes)", seq, len(v))
	}
	e := &Entry{
		Seq:     seq,
		State:   State(v[0]),
		Retries: binary.LittleEndian.Uint32(v[1:5]),
		Payload: append([]byte(nil), v[valueHeaderSize:]...),
	}
	if ns := int64(binary.LittleEndian.Uint64(v[5:13])); ns != 0 {
		e.LastAttempt = time.Unix(0, ns)
	}
	return e, nil
}
