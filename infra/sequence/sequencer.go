package sequence

import "sync/atomic"

// Sequencer hands out strictly monotonic ids. One instance backs the
// engine-wide execution id space; another numbers the event outbox. If
// several engines must share an id space, they share one Sequencer.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer that will issue start+1 first.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next id.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued id.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
