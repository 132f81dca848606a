package orderbook

import (
	"container/heap"
	"errors"
	"math"
	"sort"
)

var ErrInvalidOrder = errors.New("orderbook: price and quantity must be positive")

type PriceLevel struct {
	Price int64
	Qty   int64 // total qty at this price level, capped at math.MaxInt64
}

// bookSide holds the resting orders of one side: a FIFO slice per price
// plus a heap of the distinct prices for O(1) best-price peeks.
type bookSide struct {
	levels map[int64][]*Order // price -> FIFO slice, ascending Seq
	prices *priceHeap
}

func newBookSide(higherFirst bool) *bookSide {
	return &bookSide{
		levels: make(map[int64][]*Order),
		prices: newPriceHeap(higherFirst),
	}
}

func (s *bookSide) best() (int64, bool) { return s.prices.Peek() }

func (s *bookSide) push(o *Order) {
	if len(s.levels[o.Price]) == 0 {
		heap.Push(s.prices, o.Price)
	}
	s.levels[o.Price] = append(s.levels[o.Price], o)
}

func (s *bookSide) front(price int64) *Order {
	level := s.levels[price]
	if len(level) == 0 {
		return nil
	}
	return level[0]
}

func (s *bookSide) popFront(price int64) {
	level := s.levels[price]
	if len(level) <= 1 {
		s.dropLevel(price)
		return
	}
	level[0] = nil
	s.levels[price] = level[1:]
}

func (s *bookSide) remove(o *Order) bool {
	level := s.levels[o.Price]
	for i, r := range level {
		if r != o {
			continue
		}
		if len(level) == 1 {
			s.dropLevel(o.Price)
			return true
		}
		s.levels[o.Price] = append(level[:i:i], level[i+1:]...)
		return true
	}
	return false
}

func (s *bookSide) dropLevel(price int64) {
	delete(s.levels, price)
	s.prices.remove(price)
}

// sortedPrices returns the level prices best first.
func (s *bookSide) sortedPrices() []int64 {
	out := make([]int64, 0, len(s.levels))
	for p, level := range s.levels {
		if len(level) > 0 {
			out = append(out, p)
		}
	}
	higherFirst := s.prices.higherFirst
	sort.Slice(out, func(i, j int) bool {
		if higherFirst {
			return out[i] > out[j]
		}
		return out[i] < out[j]
	})
	return out
}

func (s *bookSide) depth() []PriceLevel {
	prices := s.sortedPrices()
	levels := make([]PriceLevel, 0, len(prices))
	for _, p := range prices {
		var total int64
		for _, o := range s.levels[p] {
			if o.Qty > math.MaxInt64-total {
				total = math.MaxInt64
				break
			}
			total += o.Qty
		}
		levels = append(levels, PriceLevel{Price: p, Qty: total})
	}
	return levels
}

// OrderBook owns every resting order of a single instrument.
// It is not safe for concurrent use; callers serialize access (see engine.Engine).
type OrderBook struct {
	bids *bookSide
	asks *bookSide

	// Order index for cancel/modify lookup. Ids are not unique; each slice
	// holds the resting orders sharing an id in ascending Seq.
	orderIndex map[string][]*Order
	resting    int

	seq uint64 // last insertion sequence handed out
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:       newBookSide(true),
		asks:       newBookSide(false),
		orderIndex: make(map[string][]*Order),
	}
}

func (ob *OrderBook) side(s Side) *bookSide {
	if s == Buy {
		return ob.bids
	}
	return ob.asks
}

// rest inserts o at the tail of its price level with a fresh sequence number.
func (ob *OrderBook) rest(o *Order) {
	ob.seq++
	o.Seq = ob.seq
	ob.side(o.Side).push(o)
	ob.orderIndex[o.ID] = append(ob.orderIndex[o.ID], o)
	ob.resting++
}

// unlink drops a fully filled maker from the front of its level.
func (ob *OrderBook) unlink(maker *Order) {
	ob.side(maker.Side).popFront(maker.Price)
	ob.unindex(maker)
}

func (ob *OrderBook) unindex(o *Order) {
	same := ob.orderIndex[o.ID]
	for i, r := range same {
		if r != o {
			continue
		}
		if len(same) == 1 {
			delete(ob.orderIndex, o.ID)
		} else {
			ob.orderIndex[o.ID] = append(same[:i:i], same[i+1:]...)
		}
		ob.resting--
		return
	}
}

// find picks the order CANCEL and MODIFY act on when several rest under
// one id: the oldest bid, else the oldest ask.
func (ob *OrderBook) find(id string) *Order {
	same := ob.orderIndex[id]
	for _, o := range same {
		if o.Side == Buy {
			return o
		}
	}
	if len(same) == 0 {
		return nil
	}
	return same[0]
}

// Place validates o and runs it through the matcher. Returned trades are in
// match order; o.Qty holds the unmatched remainder afterwards. Ids are not
// checked for uniqueness.
func (ob *OrderBook) Place(o *Order) ([]Trade, error) {
	if !o.Validate() {
		return nil, ErrInvalidOrder
	}
	return Match(ob, o), nil
}

// Cancel removes the resting order with the given id from whichever side
// holds it. The removed order is returned.
func (ob *OrderBook) Cancel(id string) (Order, bool) {
	o := ob.find(id)
	if o == nil {
		return Order{}, false
	}
	ob.side(o.Side).remove(o)
	ob.unindex(o)
	return *o, true
}

// Lookup returns a copy of the resting order Cancel would remove.
func (ob *OrderBook) Lookup(id string) (Order, bool) {
	o := ob.find(id)
	if o == nil {
		return Order{}, false
	}
	return *o, true
}

// Len returns the number of resting orders on both sides.
func (ob *OrderBook) Len() int { return ob.resting }

// BestBid returns the highest bid price.
func (ob *OrderBook) BestBid() (int64, bool) { return ob.bids.best() }

// BestAsk returns the lowest ask price.
func (ob *OrderBook) BestAsk() (int64, bool) { return ob.asks.best() }

// GetBidLevels returns all bid price levels sorted high to low (best bid first).
func (ob *OrderBook) GetBidLevels() []PriceLevel { return ob.bids.depth() }

// GetAskLevels returns all ask price levels sorted low to high (best ask first).
func (ob *OrderBook) GetAskLevels() []PriceLevel { return ob.asks.depth() }

// Orders returns copies of the resting orders of one side in matching
// priority: best price first, then ascending Seq.
func (ob *OrderBook) Orders(s Side) []Order {
	bs := ob.side(s)
	var out []Order
	for _, p := range bs.sortedPrices() {
		for _, o := range bs.levels[p] {
			out = append(out, *o)
		}
	}
	return out
}
