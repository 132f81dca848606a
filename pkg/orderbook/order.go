package orderbook

type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "UNKNOWN"
}

// Opposite returns the side an order of side s trades against.
func (s Side) Opposite() Side { return -s }

// ParseSide maps the command token (BUY/SELL) to a Side.
func ParseSide(tok string) (Side, bool) {
	switch tok {
	case "BUY":
		return Buy, true
	case "SELL":
		return Sell, true
	}
	return 0, false
}

// OrderType decides what happens to the unmatched remainder of an order.
type OrderType uint8

const (
	GFD OrderType = iota + 1 // remainder rests until filled or cancelled
	IOC                      // remainder is discarded
)

func (t OrderType) String() string {
	switch t {
	case GFD:
		return "GFD"
	case IOC:
		return "IOC"
	}
	return "UNKNOWN"
}

func ParseOrderType(tok string) (OrderType, bool) {
	switch tok {
	case "GFD":
		return GFD, true
	case "IOC":
		return IOC, true
	}
	return 0, false
}

type Order struct {
	ID    string
	Side  Side
	Type  OrderType
	Price int64 // integer ticks
	Qty   int64 // remaining quantity, decremented on every fill
	Seq   uint64
}

// Validate reports whether the order may enter the matcher at all.
func (o *Order) Validate() bool {
	return o.Qty >= 1 && o.Price >= 1
}
