package orderbook

import "fmt"

// OrderBook holds the resting liquidity for one instrument: a tree of limit
// levels per side plus one permanent market queue per side. The two market
// queues hold unpriced orders and are matched before any limit level; they
// may legitimately be empty and are never removed.
//
// The book is single-writer. It stores handles only; the engine that owns it
// resolves them through the client registries.
type OrderBook struct {
	bids *levelTree
	asks *levelTree

	marketBid *PriceLevel
	marketAsk *PriceLevel
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:      newLevelTree(),
		asks:      newLevelTree(),
		marketBid: NewPriceLevel(MarketPrice),
		marketAsk: NewPriceLevel(MarketPrice),
	}
}

// MarketQueue returns the permanent unpriced queue for the given side.
func (b *OrderBook) MarketQueue(side Side) *PriceLevel {
	if side == Buy {
		return b.marketBid
	}
	return b.marketAsk
}

// FindOrCreateLevel returns the limit level for insertion, creating it if
// absent. The price must not be the market sentinel.
func (b *OrderBook) FindOrCreateLevel(side Side, price Price) *PriceLevel {
	if price.IsMarket() {
		panic("orderbook: limit level at market sentinel price")
	}
	return b.tree(side).FindOrCreate(price)
}

// Level returns the limit level at price on the given side, or nil.
func (b *OrderBook) Level(side Side, price Price) *PriceLevel {
	return b.tree(side).Level(price)
}

// BestLevel returns the best-priced limit level on a side: the highest bid
// or the lowest ask. Nil if the side has no limit levels.
func (b *OrderBook) BestLevel(side Side) *PriceLevel {
	if side == Buy {
		return b.bids.Max()
	}
	return b.asks.Min()
}

// RemoveLevelIfEmpty drops a drained limit level from its side. Levels with
// resting orders stay; the market queues are permanent and never pass
// through here.
func (b *OrderBook) RemoveLevelIfEmpty(side Side, price Price) {
	lvl := b.tree(side).Level(price)
	if lvl != nil && lvl.Empty() {
		b.tree(side).Remove(price)
	}
}

// LevelCount returns the number of limit levels on a side.
func (b *OrderBook) LevelCount(side Side) int {
	return b.tree(side).Size()
}

func (b *OrderBook) tree(side Side) *levelTree {
	switch side {
	case Buy:
		return b.bids
	case Sell:
		return b.asks
	default:
		panic(fmt.Sprintf("orderbook: no tree for side %v", side))
	}
}

// Depth is a read-only dump of the book used for diagnostics. Each side
// lists the market queue first, then limit levels best-first.
type Depth struct {
	Bids []LevelDepth
	Asks []LevelDepth
}

type LevelDepth struct {
	Price  Price
	Market bool
	Volume int64
	Orders []OrderDepth
}

type OrderDepth struct {
	Client      ClientID
	Order       OrderID
	Outstanding int64
}

// Depth captures the current book shape, resolving orders through r.
func (b *OrderBook) Depth(r Resolver) Depth {
	var d Depth
	d.Bids = append(d.Bids, levelDepth(b.marketBid, true, r))
	b.bids.Descend(func(lvl *PriceLevel) bool {
		d.Bids = append(d.Bids, levelDepth(lvl, false, r))
		return true
	})
	d.Asks = append(d.Asks, levelDepth(b.marketAsk, true, r))
	b.asks.Ascend(func(lvl *PriceLevel) bool {
		d.Asks = append(d.Asks, levelDepth(lvl, false, r))
		return true
	})
	return d
}

func levelDepth(lvl *PriceLevel, market bool, r Resolver) LevelDepth {
	ld := LevelDepth{
		Price:  lvl.Price,
		Market: market,
	}
	lvl.Each(r, func(o *Order) bool {
		ld.Volume += o.Outstanding()
		ld.Orders = append(ld.Orders, OrderDepth{
			Client:      o.ClientID(),
			Order:       o.ID(),
			Outstanding: o.Outstanding(),
		})
		return true
	})
	return ld
}
