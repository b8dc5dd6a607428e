package orderbook

import "fmt"

// Handle identifies an order without owning it. Price levels store handles
// only; every book operation resolves them through the owning registry.
type Handle struct {
	Client ClientID
	Order  OrderID
}

// Resolver maps a handle back to its registry-owned order.
type Resolver interface {
	Lookup(Handle) *Order
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(Handle) *Order

func (f ResolverFunc) Lookup(h Handle) *Order { return f(h) }

// PriceLevel is a FIFO queue of order handles resting at one price. Time
// priority within the level is insertion order, oldest first.
type PriceLevel struct {
	Price Price

	queue []Handle
}

func NewPriceLevel(price Price) *PriceLevel {
	return &PriceLevel{Price: price}
}

// Insert appends the order at the tail. The order's price must equal the
// level's price.
func (p *PriceLevel) Insert(o *Order) {
	if o.Price() != p.Price {
		panic(fmt.Sprintf("orderbook: order price %v does not match level %v", o.Price(), p.Price))
	}
	p.queue = append(p.queue, o.Handle())
}

// Front returns the oldest resting handle.
func (p *PriceLevel) Front() (Handle, bool) {
	if len(p.queue) == 0 {
		return Handle{}, false
	}
	return p.queue[0], true
}

func (p *PriceLevel) PopFront() {
	if len(p.queue) == 0 {
		panic("orderbook: PopFront on empty level")
	}
	p.queue = p.queue[1:]
}

// Contains reports whether the handle rests in this level.
func (p *PriceLevel) Contains(h Handle) bool {
	for _, q := range p.queue {
		if q == h {
			return true
		}
	}
	return false
}

// Remove unlinks the handle, preserving the order of the rest. Linear scan;
// levels are shallow in practice.
func (p *PriceLevel) Remove(h Handle) bool {
	for i, q := range p.queue {
		if q == h {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return true
		}
	}
	return false
}

func (p *PriceLevel) Empty() bool { return len(p.queue) == 0 }

func (p *PriceLevel) Len() int { return len(p.queue) }

// Volume sums the outstanding quantity of all resident orders. Used for
// depth reporting, not matching.
func (p *PriceLevel) Volume(r Resolver) int64 {
	var vol int64
	for _, h := range p.queue {
		if o := r.Lookup(h); o != nil {
			vol += o.Outstanding()
		}
	}
	return vol
}

// Each visits resident orders front to back, stopping when fn returns false.
func (p *PriceLevel) Each(r Resolver, fn func(*Order) bool) {
	for _, h := range p.queue {
		o := r.Lookup(h)
		if o == nil {
			continue
		}
		if !fn(o) {
			return
		}
	}
}
