package orderbook

import "container/heap"

// priceHeap tracks the distinct price levels of one book side.
// Use container/heap to manipulate it (Init, Push, Pop, Remove).
// Bids keep the highest price on top, asks the lowest.
type priceHeap struct {
	prices      []int64
	higherFirst bool
}

func newPriceHeap(higherFirst bool) *priceHeap {
	h := &priceHeap{higherFirst: higherFirst}
	heap.Init(h)
	return h
}

func (h priceHeap) Len() int { return len(h.prices) }

func (h priceHeap) Less(i, j int) bool {
	if h.higherFirst {
		return h.prices[i] > h.prices[j]
	}
	return h.prices[i] < h.prices[j]
}

func (h priceHeap) Swap(i, j int) { h.prices[i], h.prices[j] = h.prices[j], h.prices[i] }

func (h *priceHeap) Push(x interface{}) {
	h.prices = append(h.prices, x.(int64))
}

func (h *priceHeap) Pop() interface{} {
	old := h.prices
	n := len(old)
	x := old[n-1]
	h.prices = old[0 : n-1]
	return x
}

// Peek returns the best price without removing it.
func (h priceHeap) Peek() (int64, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}

// remove drops a price level from the heap (O(N) scan, only on emptied levels)
func (h *priceHeap) remove(price int64) {
	for i, p := range h.prices {
		if p == price {
			heap.Remove(h, i)
			return
		}
	}
}
