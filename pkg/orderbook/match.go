package orderbook

// Trade is one match event between a resting (maker) order and an incoming
// (taker) order. Each side reports its own limit price; there is no single
// clearing price.
type Trade struct {
	MakerID    string
	MakerPrice int64
	TakerID    string
	TakerPrice int64
	Qty        int64
}

// crosses reports whether a resting level at price p is eligible for taker.
func crosses(taker *Order, p int64) bool {
	if taker.Side == Buy {
		return p <= taker.Price
	}
	return p >= taker.Price
}

// Match walks the opposite side of the book by price-time priority and fills
// o against it. Fully filled makers leave the book. Afterwards a GFD
// remainder rests on its own side; an IOC remainder is dropped.
//
// Match does not validate o; use OrderBook.Place for that.
func Match(ob *OrderBook, o *Order) []Trade {
	var trades []Trade
	opp := ob.side(o.Side.Opposite())

	for o.Qty > 0 {
		p, ok := opp.best()
		if !ok || !crosses(o, p) {
			break
		}
		maker := opp.front(p)
		if maker == nil {
			opp.dropLevel(p)
			continue
		}
		match := min(o.Qty, maker.Qty)
		o.Qty -= match
		maker.Qty -= match
		trades = append(trades, Trade{
			MakerID:    maker.ID,
			MakerPrice: maker.Price,
			TakerID:    o.ID,
			TakerPrice: o.Price,
			Qty:        match,
		})
		if maker.Qty == 0 {
			ob.unlink(maker)
		}
	}

	if o.Qty > 0 && o.Type == GFD {
		cp := *o
		ob.rest(&cp)
		o.Seq = cp.Seq
	}
	return trades
}
