package orderbook

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// drawBook fills a book with random GFD orders on one side.
func drawBook(t *rapid.T, side Side) *OrderBook {
	ob := NewOrderBook()
	n := rapid.IntRange(0, 20).Draw(t, "resting")
	for i := 0; i < n; i++ {
		o := &Order{
			ID:    fmt.Sprintf("r%d", i),
			Side:  side,
			Type:  GFD,
			Price: rapid.Int64Range(1, 50).Draw(t, "price"),
			Qty:   rapid.Int64Range(1, 20).Draw(t, "qty"),
		}
		if _, err := ob.Place(o); err != nil {
			t.Fatalf("seed order rejected: %v", err)
		}
	}
	return ob
}

func TestProperty_QuantityConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		restingSide := rapid.SampledFrom([]Side{Buy, Sell}).Draw(t, "restingSide")
		ob := drawBook(t, restingSide)

		before := make(map[string]int64)
		for _, o := range ob.Orders(restingSide) {
			before[o.ID] = o.Qty
		}

		taker := &Order{
			ID:    "taker",
			Side:  restingSide.Opposite(),
			Type:  rapid.SampledFrom([]OrderType{GFD, IOC}).Draw(t, "type"),
			Price: rapid.Int64Range(1, 50).Draw(t, "takerPrice"),
			Qty:   rapid.Int64Range(1, 100).Draw(t, "takerQty"),
		}
		original := taker.Qty

		trades, err := ob.Place(taker)
		if err != nil {
			t.Fatalf("Place error: %v", err)
		}

		var filled int64
		consumed := make(map[string]int64)
		for _, tr := range trades {
			if tr.Qty <= 0 {
				t.Fatalf("non-positive trade qty %d", tr.Qty)
			}
			filled += tr.Qty
			consumed[tr.MakerID] += tr.Qty
		}
		if filled+taker.Qty != original {
			t.Fatalf("filled %d + remaining %d != original %d", filled, taker.Qty, original)
		}

		after := make(map[string]int64)
		for _, o := range ob.Orders(restingSide) {
			after[o.ID] = o.Qty
		}
		for id, q := range before {
			if before[id]-after[id] != consumed[id] {
				t.Fatalf("maker %s: before %d after %d consumed %d", id, q, after[id], consumed[id])
			}
		}

		_, rested := ob.Lookup("taker")
		switch {
		case taker.Type == IOC && rested:
			t.Fatalf("IOC remainder rested")
		case taker.Type == GFD && taker.Qty > 0 && !rested:
			t.Fatalf("GFD remainder %d did not rest", taker.Qty)
		case taker.Qty == 0 && rested:
			t.Fatalf("fully filled order rested")
		}
	})
}

func TestProperty_PricePriority(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		restingSide := rapid.SampledFrom([]Side{Buy, Sell}).Draw(t, "restingSide")
		ob := drawBook(t, restingSide)

		taker := &Order{
			ID:    "taker",
			Side:  restingSide.Opposite(),
			Type:  IOC,
			Price: rapid.Int64Range(1, 50).Draw(t, "takerPrice"),
			Qty:   rapid.Int64Range(1, 400).Draw(t, "takerQty"),
		}
		seqOf := make(map[string]uint64)
		for _, o := range ob.Orders(restingSide) {
			seqOf[o.ID] = o.Seq
		}

		trades, err := ob.Place(taker)
		if err != nil {
			t.Fatalf("Place error: %v", err)
		}

		for i, tr := range trades {
			if !crosses(taker, tr.MakerPrice) {
				t.Fatalf("trade %d at ineligible price %d for taker %d", i, tr.MakerPrice, taker.Price)
			}
			if i == 0 {
				continue
			}
			prev := trades[i-1]
			better := prev.MakerPrice < tr.MakerPrice
			if taker.Side == Sell {
				better = prev.MakerPrice > tr.MakerPrice
			}
			if !better && prev.MakerPrice != tr.MakerPrice {
				t.Fatalf("trade %d price %d matched before better price %d", i-1, prev.MakerPrice, tr.MakerPrice)
			}
			if prev.MakerPrice == tr.MakerPrice && seqOf[prev.MakerID] > seqOf[tr.MakerID] {
				t.Fatalf("FIFO violated at price %d: %s before %s", tr.MakerPrice, prev.MakerID, tr.MakerID)
			}
		}

		// whatever is left on the resting side must not cross the taker
		if taker.Qty > 0 {
			var best int64
			var ok bool
			if restingSide == Buy {
				best, ok = ob.BestBid()
			} else {
				best, ok = ob.BestAsk()
			}
			if ok && crosses(taker, best) {
				t.Fatalf("taker left %d unfilled while level %d still crosses", taker.Qty, best)
			}
		}
	})
}

func TestProperty_InvalidOrdersNoop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := drawBook(t, Sell)
		bids, asks := ob.GetBidLevels(), ob.GetAskLevels()

		o := &Order{
			ID:    "bad",
			Side:  Buy,
			Type:  GFD,
			Price: rapid.Int64Range(-100, 50).Draw(t, "price"),
			Qty:   rapid.Int64Range(-100, 0).Draw(t, "qty"),
		}
		if rapid.Bool().Draw(t, "swap") {
			o.Price, o.Qty = o.Qty, rapid.Int64Range(1, 50).Draw(t, "qty2")
		}

		trades, err := ob.Place(o)
		if err != ErrInvalidOrder {
			t.Fatalf("expected ErrInvalidOrder, got %v", err)
		}
		if len(trades) != 0 {
			t.Fatalf("invalid order traded")
		}
		if fmt.Sprint(bids, asks) != fmt.Sprint(ob.GetBidLevels(), ob.GetAskLevels()) {
			t.Fatalf("book changed")
		}
	})
}
