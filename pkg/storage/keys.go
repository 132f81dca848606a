package storage

import "fmt"

// Trade tape key schema:
//
//	trade:{symbol}:{seq}:{tradeID}
//
// seq is zero-padded (20 digits) so keys sort in tape order.
const prefixTrade = "trade:"

func tradeKey(symbol string, seq uint64, tradeID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", prefixTrade, symbol, seq, tradeID))
}

// tradePrefix returns the prefix for all trades of a symbol
func tradePrefix(symbol string) []byte {
	return []byte(fmt.Sprintf("%s%s:", prefixTrade, symbol))
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
