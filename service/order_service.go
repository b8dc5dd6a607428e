package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"matchd/domain/orderbook"
	"matchd/engine"
	"matchd/infra/audit"
	"matchd/infra/journal"
	"matchd/infra/kafka"
	"matchd/infra/sequence"
	"matchd/wire"
)

// tickTimeout bounds the hand-off to the async tick producer. The engine
// lock is held here, so the bound must stay tight.
const tickTimeout = time.Second

/*
OrderService is the only write entry point into the system.

All coordination between:
- engine (matching)
- infra (journal, audit, kafka)
happens here. The engine calls back into observe for every event it
emits; observe fans the event out to the audit trail, the outbox
journal, and the tick feed.
*/

type OrderService struct {
	engine    *engine.Engine
	journal   *journal.Journal
	audit     *audit.Log
	ticks     *kafka.Producer
	outboxSeq *sequence.Sequencer

	tapMu   sync.Mutex
	taps    map[uint64]Tap
	nextTap uint64
}

// Tap receives every encoded event record after it has been journaled.
// Taps must not block; the engine lock is held while they run.
type Tap func(rec *wire.EventRecord)

// Config carries the optional infrastructure. Any nil field disables that
// concern; the engine runs the same either way.
type Config struct {
	Journal *journal.Journal
	Audit   *audit.Log
	Ticks   *kafka.Producer
	ExecIDs *sequence.Sequencer
}

// NewOrderService wires all dependencies. The outbox sequencer resumes
// after the journal's highest stored sequence so restarts never reuse one.
func NewOrderService(cfg Config) (*OrderService, error) {
	var last uint64
	if cfg.Journal != nil {
		var err error
		last, err = cfg.Journal.LastSeq()
		if err != nil {
			return nil, fmt.Errorf("service: seed outbox sequence: %w", err)
		}
	}

	execIDs := cfg.ExecIDs
	if execIDs == nil {
		execIDs = sequence.New(0)
	}

	s := &OrderService{
		journal:   cfg.Journal,
		audit:     cfg.Audit,
		ticks:     cfg.Ticks,
		outboxSeq: sequence.New(last),
		taps:      make(map[uint64]Tap),
	}
	s.engine = engine.New(execIDs, engine.WithObserver(s.observe))
	return s, nil
}

// Engine exposes the underlying engine for event stream subscribers.
func (s *OrderService) Engine() *engine.Engine { return s.engine }

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) RegisterClient(id orderbook.ClientID, cb engine.Callback) bool {
	return s.engine.RegisterClient(id, cb)
}

func (s *OrderService) SubmitOrder(client orderbook.ClientID, side orderbook.Side, price orderbook.Price, qty int64) (orderbook.OrderID, error) {
	return s.engine.SubmitNewOrder(client, side, price, qty)
}

func (s *OrderService) CancelOrder(client orderbook.ClientID, id orderbook.OrderID) error {
	return s.engine.SubmitCancelOrder(client, id)
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) Depth() orderbook.Depth {
	return s.engine.Depth()
}

// Subscribe adds a tap to the live event stream and returns its remover.
func (s *OrderService) Subscribe(tap Tap) (cancel func()) {
	s.tapMu.Lock()
	defer s.tapMu.Unlock()

	id := s.nextTap
	s.nextTap++
	s.taps[id] = tap
	return func() {
		s.tapMu.Lock()
		defer s.tapMu.Unlock()
		delete(s.taps, id)
	}
}

// Subscribers reports the number of live taps.
func (s *OrderService) Subscribers() int {
	s.tapMu.Lock()
	defer s.tapMu.Unlock()
	return len(s.taps)
}

//
// ──────────────────────────────────────────────────────────
// Event fan-out
// ──────────────────────────────────────────────────────────
//

// observe runs inside the engine's lock after the event committed.
// Failures here are logged and dropped; durability problems must never
// reject an already-matched order.
func (s *OrderService) observe(order *orderbook.Order, ev orderbook.Event) {
	rec := wire.NewEventRecord(order, ev)
	rec.Seq = s.outboxSeq.Next()

	payload, err := rec.Marshal()
	if err != nil {
		log.Printf("[service] encode event seq=%d: %v", rec.Seq, err)
		return
	}

	if s.audit != nil {
		if err := s.audit.Append(audit.NewRecord(byte(ev.Kind()), rec.Seq, payload)); err != nil {
			log.Printf("[service] audit append seq=%d: %v", rec.Seq, err)
		}
	}
	if s.journal != nil {
		if err := s.journal.Append(rec.Seq, payload); err != nil {
			log.Printf("[service] journal append seq=%d: %v", rec.Seq, err)
		}
	}
	if s.ticks != nil {
		if _, ok := ev.(*orderbook.ExecutionEvent); ok {
			ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
			key := []byte(fmt.Sprintf("%020d", rec.ExecID))
			if err := s.ticks.Send(ctx, key, payload); err != nil {
				log.Printf("[service] tick publish seq=%d: %v", rec.Seq, err)
			}
			cancel()
		}
	}

	s.tapMu.Lock()
	for _, tap := range s.taps {
		tap(rec)
	}
	s.tapMu.Unlock()
}
