package engine

import (
	"fmt"
	"log"
	"sync"

	"matchd/domain/orderbook"
	"matchd/infra/sequence"
)

// Engine is the single writer for one instrument. It owns the order book
// and the per-client order registries, crosses incoming orders under
// price-then-time priority, and delivers the resulting events.
//
// Submit and cancel run to completion under one lock; there are no
// suspension points between mutations. Events are delivered after all
// mutations of the call have committed, so a failing callback can never
// corrupt the book.
type Engine struct {
	mu       sync.Mutex
	book     *orderbook.OrderBook
	clients  map[orderbook.ClientID]*clientInfo
	execIDs  *sequence.Sequencer
	observer Observer
}

// clientInfo is one client's registry: its callback, its order id counter,
// and every order it ever submitted. Terminal orders stay here as the
// audit trail.
type clientInfo struct {
	callback Callback
	nextID   orderbook.OrderID
	orders   map[orderbook.OrderID]*orderbook.Order
}

// response pairs an order with one event recorded on it, in generation
// order, for delivery after the call's mutations are done.
type response struct {
	order *orderbook.Order
	event orderbook.Event
}

type Option func(*Engine)

// WithObserver installs a tap that sees every event after the owning
// client's callback.
func WithObserver(fn Observer) Option {
	return func(e *Engine) { e.observer = fn }
}

// New creates an engine. Execution ids are drawn from execIDs, which may be
// shared between engines when one id space must span instruments.
func New(execIDs *sequence.Sequencer, opts ...Option) *Engine {
	e := &Engine{
		book:    orderbook.NewOrderBook(),
		clients: make(map[orderbook.ClientID]*clientInfo),
		execIDs: execIDs,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterClient adds a client. Returns false if the id is taken. A nil
// callback is legal; such a client's events are dropped at delivery.
func (e *Engine) RegisterClient(id orderbook.ClientID, cb Callback) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.clients[id]; exists {
		return false
	}
	e.clients[id] = &clientInfo{
		callback: cb,
		orders:   make(map[orderbook.OrderID]*orderbook.Order),
	}
	return true
}

// SubmitNewOrder validates, acknowledges, crosses, and rests or expires one
// order, then delivers the produced events. The zero price submits a market
// order. Returns the assigned order id.
func (e *Engine) SubmitNewOrder(client orderbook.ClientID, side orderbook.Side, price orderbook.Price, qty int64) (orderbook.OrderID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ci, ok := e.clients[client]
	if !ok {
		return 0, ErrUnknownClient
	}
	if side != orderbook.Buy && side != orderbook.Sell {
		return 0, ErrInvalidSide
	}
	if price < 0 {
		return 0, ErrInvalidPrice
	}
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}

	o := orderbook.NewOrder(client, side, price, qty)

	var responses []response
	ci.nextID++
	responses = append(responses, response{o, o.RecordNew(ci.nextID)})
	ci.orders[o.ID()] = o

	// Always acknowledge before matching. Rejection here is reserved for
	// future admission checks; no code path produces it today.
	responses = append(responses, response{o, o.RecordNewAck(o.Price(), o.Qty())})

	e.cross(o, &responses)

	if o.Outstanding() > 0 {
		if o.Price().IsMarket() {
			// Unpriced residual never rests; it expires.
			responses = append(responses, response{o, o.RecordExpiry(o.Outstanding())})
		} else {
			e.book.FindOrCreateLevel(side, o.Price()).Insert(o)
		}
	}

	e.deliver(responses)
	return o.ID(), nil
}

// SubmitCancelOrder removes a resting order and delivers CANCEL and
// CANCEL_ACK. Fails without mutation if the order is unknown to the client
// or already has zero outstanding quantity.
func (e *Engine) SubmitCancelOrder(client orderbook.ClientID, id orderbook.OrderID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ci, ok := e.clients[client]
	if !ok {
		return ErrUnknownClient
	}
	o, ok := ci.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	if o.Outstanding() == 0 {
		return ErrAlreadyTerminal
	}

	// An order with outstanding quantity must be resting. Not finding it
	// where its price says it should be is an internal invariant breach,
	// not a caller error; the book is left as found.
	var lvl *orderbook.PriceLevel
	if o.Price().IsMarket() {
		lvl = e.book.MarketQueue(o.Side())
	} else {
		lvl = e.book.Level(o.Side(), o.Price())
		if lvl == nil {
			return fmt.Errorf("%w: no %v level at %v for order %d", ErrBookInconsistency, o.Side(), o.Price(), id)
		}
	}
	if !lvl.Contains(o.Handle()) {
		return fmt.Errorf("%w: order %d not resting at %v %v", ErrBookInconsistency, id, o.Side(), o.Price())
	}

	var responses []response
	responses = append(responses, response{o, o.RecordCancel()})
	responses = append(responses, response{o, o.RecordCancelAck(o.Outstanding())})

	lvl.Remove(o.Handle())
	if !o.Price().IsMarket() {
		e.book.RemoveLevelIfEmpty(o.Side(), o.Price())
	}

	e.deliver(responses)
	return nil
}

// Depth returns the read-only book dump, market queues included.
func (e *Engine) Depth() orderbook.Depth {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Depth(orderbook.ResolverFunc(e.lookup))
}

// cross matches the taker against the contra side: first the unpriced
// market queue unconditionally, then limit levels in best-price order,
// stopping at the first level the taker's limit no longer crosses. Market
// takers never stop on the price test.
func (e *Engine) cross(taker *orderbook.Order, responses *[]response) {
	contra := taker.Side().Opposite()

	mkt := e.book.MarketQueue(contra)
	for taker.Outstanding() > 0 && !mkt.Empty() {
		maker := e.frontOrder(mkt)
		e.crossPair(taker, maker, responses)
		if maker.Outstanding() == 0 {
			mkt.PopFront()
		}
	}

	for taker.Outstanding() > 0 {
		lvl := e.book.BestLevel(contra)
		if lvl == nil {
			return
		}
		if !taker.Price().IsMarket() {
			if taker.Side() == orderbook.Buy && lvl.Price > taker.Price() {
				return
			}
			if taker.Side() == orderbook.Sell && lvl.Price < taker.Price() {
				return
			}
		}
		for taker.Outstanding() > 0 && !lvl.Empty() {
			maker := e.frontOrder(lvl)
			e.crossPair(taker, maker, responses)
			if maker.Outstanding() == 0 {
				lvl.PopFront()
			}
		}
		if lvl.Empty() {
			e.book.RemoveLevelIfEmpty(contra, lvl.Price)
		}
	}
}

// crossPair fills min(outstanding) on both sides at the maker's price under
// one freshly minted execution id, maker event first.
func (e *Engine) crossPair(taker, maker *orderbook.Order, responses *[]response) {
	qty := min(taker.Outstanding(), maker.Outstanding())
	execID := orderbook.ExecID(e.execIDs.Next())
	px := maker.Price()

	*responses = append(*responses,
		response{maker, maker.RecordExecution(execID, px, qty)},
		response{taker, taker.RecordExecution(execID, px, qty)},
	)
}

// frontOrder resolves the head of a level. A dangling handle means the book
// and the registries disagree, which is fatal mid-crossing.
func (e *Engine) frontOrder(lvl *orderbook.PriceLevel) *orderbook.Order {
	h, ok := lvl.Front()
	if !ok {
		panic("engine: frontOrder on empty level")
	}
	o := e.lookup(h)
	if o == nil {
		panic(fmt.Sprintf("engine: dangling handle %+v in book", h))
	}
	return o
}

func (e *Engine) lookup(h orderbook.Handle) *orderbook.Order {
	ci, ok := e.clients[h.Client]
	if !ok {
		return nil
	}
	return ci.orders[h.Order]
}

// deliver dispatches events in generation order: first to the owning
// client's callback, then to the observer. All mutations have committed by
// now; a panicking callback is contained and logged.
func (e *Engine) deliver(responses []response) {
	for _, r := range responses {
		if ci := e.clients[r.order.ClientID()]; ci != nil && ci.callback != nil {
			e.dispatch(ci.callback, r.order, r.event)
		}
		if e.observer != nil {
			e.observer(r.order, r.event)
		}
	}
}

func (e *Engine) dispatch(cb Callback, o *orderbook.Order, ev orderbook.Event) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[engine] callback panic client=%d order=%d kind=%s: %v",
				o.ClientID(), o.ID(), ev.Kind(), p)
		}
	}()

	switch ev := ev.(type) {
	case *orderbook.NewEvent:
		cb.OnNew(o, ev)
	case *orderbook.NewRejectEvent:
		cb.OnNewReject(o, ev)
	case *orderbook.NewAckEvent:
		cb.OnNewAck(o, ev)
	case *orderbook.CancelEvent:
		cb.OnCancel(o, ev)
	case *orderbook.CancelRejectEvent:
		cb.OnCancelReject(o, ev)
	case *orderbook.CancelAckEvent:
		cb.OnCancelAck(o, ev)
	case *orderbook.ExecutionEvent:
		cb.OnExecution(o, ev)
	case *orderbook.ExpiryEvent:
		cb.OnExpiry(o, ev)
	default:
		panic(fmt.Sprintf("engine: unknown event kind %T", ev))
	}
}
