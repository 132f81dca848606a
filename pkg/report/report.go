// Package report renders matcher output and book depth as the plain-text
// reports returned to command callers.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/uhyunpark/ordermatch/pkg/orderbook"
)

// LineSeparator joins the lines of a multi-line report.
const LineSeparator = "\n"

// TradeLine formats one match event:
// TRADE <makerId> <makerPrice> <qty> <takerId> <takerPrice> <qty>
func TradeLine(t orderbook.Trade) string {
	return fmt.Sprintf("TRADE %s %d %d %s %d %d", t.MakerID, t.MakerPrice, t.Qty, t.TakerID, t.TakerPrice, t.Qty)
}

// Trades joins the trade lines in emission order. No trades, empty report.
func Trades(trades []orderbook.Trade) string {
	if len(trades) == 0 {
		return ""
	}
	lines := make([]string, len(trades))
	for i, t := range trades {
		lines[i] = TradeLine(t)
	}
	return strings.Join(lines, LineSeparator)
}

// Depth renders both sides of the book, asks first, each side listed from
// the highest price down. Every level passed in is printed.
func Depth(asks, bids []orderbook.PriceLevel) string {
	lines := make([]string, 0, len(asks)+len(bids)+2)
	lines = append(lines, "SELL:")
	lines = appendLevels(lines, asks)
	lines = append(lines, "BUY:")
	lines = appendLevels(lines, bids)
	return strings.Join(lines, LineSeparator)
}

func appendLevels(lines []string, levels []orderbook.PriceLevel) []string {
	sorted := make([]orderbook.PriceLevel, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
	for _, l := range sorted {
		lines = append(lines, fmt.Sprintf("%d %d", l.Price, l.Qty))
	}
	return lines
}
